package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartserve-ai/smartserve/internal/service"
	"github.com/smartserve-ai/smartserve/internal/store/memory"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingTagger struct{}

func (failingTagger) Tags(context.Context, string, string) ([]string, error) {
	return nil, errors.New("status 500 from upstream")
}

func newTestServer(t *testing.T, health func(context.Context) error) *httptest.Server {
	t.Helper()

	svc, err := service.New(service.Options{
		Store:     memory.New(),
		Extractor: tags.Memoize(tags.DefaultKeyword()),
		Analyzer:  tags.NewGenerative(failingTagger{}, nil, zap.NewNop()),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(Dependencies{Service: svc, Health: health}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	status, body := call(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	down := newTestServer(t, func(context.Context) error { return errors.New("db gone") })
	status, body = call(t, down, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["status"])
}

func TestAnalyzeSoftFails(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := call(t, srv, http.MethodPost, "/api/ai/analyze", `{"text":"I teach math","type":"skills"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["skills"])

	status, body = call(t, srv, http.MethodPost, "/api/ai/analyze", `not json`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["skills"])
}

func TestVolunteerCreateAcceptsNumericPhone(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := call(t, srv, http.MethodPost, "/api/volunteer/create",
		`{"user_id":"u1","full_name":"Asha","contact_no":9876543210,"raw_description":"I teach kids","location":"Pune","availability":"Weekends"}`)
	require.Equal(t, http.StatusOK, status, body)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"Teaching", "Childcare"}, body["ai_skills"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "9876543210", data["contact_no"])
	assert.Equal(t, "u1", data["id"])

	status, body = call(t, srv, http.MethodGet, "/api/volunteer/u1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Asha", body["full_name"])
}

func TestValidationIs400(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := call(t, srv, http.MethodPost, "/api/volunteer/create", `{"user_id":"u1","full_name":"Asha","contact_no":"123"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "contact_no")

	status, _ = call(t, srv, http.MethodPost, "/api/ngo/create", `[1,2,3]`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, srv, http.MethodGet, "/api/volunteer/u1/opportunities?exclude_applied=maybe", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMissingRecordsAre404(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/api/volunteer/ghost", "/api/ngo/ghost", "/api/ngo/ghost/applications", "/api/volunteer/ghost/interviews"} {
		status, body := call(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.NotEmpty(t, body["error"], path)
	}
}

func TestNeedMatchApplyAndInterviewFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	status, _ := call(t, srv, http.MethodPost, "/api/volunteer/create",
		`{"user_id":"u1","full_name":"Asha","contact_no":"9876543210","raw_description":"I teach and drive","location":"Pune","availability":"Weekends"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := call(t, srv, http.MethodPost, "/api/ngo/create",
		`{"user_id":"ngo-1","org_name":"Teach First","contact_info":9123456780,"raw_requirement":"Math teacher for 3 months","location":"Pune"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, []any{"Teaching", "Math"}, body["ai_needs"])
	need := body["data"].(map[string]any)
	needID := need["id"].(string)
	assert.Equal(t, "3 months", need["duration"])

	status, body = call(t, srv, http.MethodPost, "/api/ngo/match", `{"raw_requirement":"math teacher","location":"pune"}`)
	require.Equal(t, http.StatusOK, status)
	matches := body["matches"].([]any)
	require.Len(t, matches, 1)
	first := matches[0].(map[string]any)
	assert.Equal(t, "u1", first["id"])
	assert.EqualValues(t, 70, first["match_score"])

	status, body = call(t, srv, http.MethodPost, "/api/match/generate", `{"volunteer_id":"u1","ngo_id":"`+needID+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 70, body["match_score"])
	assert.Equal(t, "Skill match: Teaching. Availability aligns with project duration. Same location.", body["explanation"])

	status, body = call(t, srv, http.MethodPost, "/api/applications", `{"ngo_post_id":"`+needID+`","volunteer_id":"u1"}`)
	require.Equal(t, http.StatusCreated, status)
	appID := body["data"].(map[string]any)["id"].(string)
	assert.Equal(t, "pending", body["data"].(map[string]any)["interview_status"])

	status, _ = call(t, srv, http.MethodPost, "/api/applications", `{"ngo_post_id":"`+needID+`","volunteer_id":"u1"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, srv, http.MethodDelete, "/api/applications/"+appID+"/interview", "")
	assert.Equal(t, http.StatusConflict, status)

	status, body = call(t, srv, http.MethodPost, "/api/applications/"+appID+"/interview",
		`{"interview_date":"2025-05-01","interview_time":"10:30","meet_link":"https://meet.example.org/x"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "scheduled", body["data"].(map[string]any)["interview_status"])

	status, body = call(t, srv, http.MethodGet, "/api/volunteer/u1/interviews", "")
	require.Equal(t, http.StatusOK, status)
	interviews := body["interviews"].([]any)
	require.Len(t, interviews, 1)
	assert.Equal(t, "Teach First", interviews[0].(map[string]any)["org_name"])

	status, body = call(t, srv, http.MethodGet, "/api/volunteer/u1/opportunities?exclude_applied=true", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["matches"])

	status, body = call(t, srv, http.MethodGet, "/api/ngo?user_id=ngo-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["posts"], 1)

	status, body = call(t, srv, http.MethodDelete, "/api/ngo/"+needID, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["deleted_applications"])
}

func TestImpactEstimate(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := call(t, srv, http.MethodPost, "/api/impact/estimate", `{"hours":"5","skill":"teaching"}`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 260, body["yearly_hours"])
	assert.EqualValues(t, 143000, body["value_created"])
	assert.EqualValues(t, 260, body["lives_touched"])

	status, _ = call(t, srv, http.MethodPost, "/api/impact/estimate", `{"hours":500}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, srv, http.MethodGet, "/api/impact/skills", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"coding", "design", "events", "general", "legal", "medical", "teaching", "writing"}, body["skills"])
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(t, nil)

	big := `{"user_id":"u1","raw_description":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	status, _ := call(t, srv, http.MethodPost, "/api/volunteer/create", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestRequestIDAndRecover(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID(log), Logging(log), Recover(log))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/explode", nil)
	req.Header.Set(requestIDHeader, "req-42")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))

	panics := observed.FilterMessage("handler panicked").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "req-42", panics[0].ContextMap()["request_id"])

	requests := observed.FilterMessage("request").All()
	require.Len(t, requests, 1)
	assert.EqualValues(t, http.StatusInternalServerError, requests[0].ContextMap()["status"])
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	h := RequestID(zap.NewNop())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
}

func TestTagMemoIsPerRequest(t *testing.T) {
	calls := 0
	extractor := tags.Memoize(tags.ExtractorFunc(func(context.Context, string, tags.Kind) tags.Set {
		calls++
		return tags.Set{"Teaching"}
	}))

	h := TagMemo(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		extractor.Extract(r.Context(), "teach", tags.KindSkills)
		extractor.Extract(r.Context(), "  TEACH ", tags.KindSkills)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 1, calls)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 2, calls)
}
