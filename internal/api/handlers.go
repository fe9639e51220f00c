package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/smartserve-ai/smartserve/internal/interview"
	"github.com/smartserve-ai/smartserve/internal/service"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"go.uber.org/zap"
)

func (h *handler) log(r *http.Request) *zap.Logger {
	return loggerFrom(r.Context(), h.logger)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, h.log(r), err)
}

func (h *handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.log(r).Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// analyze never fails: anything going wrong yields an empty skill list.
func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(r, &req); err != nil {
		h.log(r).Warn("analyze request unreadable", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{"skills": []string{}})
		return
	}

	set := h.svc.Analyze(r.Context(), req.Text, tags.ParseKind(req.Type))
	writeJSON(w, http.StatusOK, map[string]any{"skills": set.Strings()})
}

func (h *handler) createVolunteer(w http.ResponseWriter, r *http.Request) {
	var in service.VolunteerInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	v, skills, err := h.svc.CreateVolunteer(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": v, "ai_skills": skills.Strings()})
}

func (h *handler) getVolunteer(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.GetVolunteer(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) updateInterest(w http.ResponseWriter, r *http.Request) {
	var in service.InterestInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	v, skills, err := h.svc.UpdateVolunteerInterest(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": v, "ai_skills": skills.Strings()})
}

func (h *handler) opportunities(w http.ResponseWriter, r *http.Request) {
	var q service.OpportunityQuery
	if raw := strings.TrimSpace(r.URL.Query().Get("exclude_applied")); raw != "" {
		exclude, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: exclude_applied must be a boolean", errBadRequest))
			return
		}
		q.ExcludeApplied = exclude
	}

	res, err := h.svc.FindOpportunities(r.Context(), r.PathValue("id"), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": res.Skills.Strings(), "matches": res.Matches})
}

func (h *handler) interviews(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListInterviews(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"interviews": items})
}

func (h *handler) createNeed(w http.ResponseWriter, r *http.Request) {
	var in service.NeedInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	n, needs, err := h.svc.CreateNeed(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": n, "ai_needs": needs.Strings()})
}

func (h *handler) getNeed(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.GetNeed(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *handler) listNeeds(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListNeedsByOwner(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *handler) deleteNeed(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.DeleteNeed(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted_applications": deleted})
}

func (h *handler) applications(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListApplicationsForNeed(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": items})
}

func (h *handler) findMatches(w http.ResponseWriter, r *http.Request) {
	var q service.MatchQuery
	if err := decode(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.svc.FindMatches(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": res.Skills.Strings(), "matches": res.Matches})
}

type generateMatchRequest struct {
	VolunteerID string `json:"volunteer_id"`
	NeedID      string `json:"ngo_id"`
}

func (h *handler) generateMatch(w http.ResponseWriter, r *http.Request) {
	var req generateMatchRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := h.svc.GenerateMatch(r.Context(), req.VolunteerID, req.NeedID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"match_score": m.Score,
		"explanation": m.Explanation,
		"data":        m,
	})
}

func (h *handler) apply(w http.ResponseWriter, r *http.Request) {
	var in service.ApplyInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	app, err := h.svc.Apply(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": app})
}

type scheduleRequest struct {
	Date     string `json:"interview_date"`
	Time     string `json:"interview_time"`
	MeetLink string `json:"meet_link"`
}

func (h *handler) scheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	app, err := h.svc.ScheduleInterview(r.Context(), r.PathValue("id"), interview.Slot{
		Date:     req.Date,
		Time:     req.Time,
		MeetLink: req.MeetLink,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": app})
}

func (h *handler) cancelInterview(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.CancelInterview(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": app})
}

type impactRequest struct {
	Hours int    `json:"hours"`
	Skill string `json:"skill"`
}

func (h *handler) estimateImpact(w http.ResponseWriter, r *http.Request) {
	var req impactRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	est, err := h.svc.EstimateImpact(req.Skill, req.Hours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (h *handler) impactSkills(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"skills": h.svc.ImpactSkills()})
}
