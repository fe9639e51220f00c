// Package api exposes the service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/smartserve-ai/smartserve/internal/service"
	"go.uber.org/zap"
)

const (
	maxBodyBytes          = 1 << 20
	DefaultRequestTimeout = 30 * time.Second
)

type Dependencies struct {
	Service *service.Service
	// Health reports whether storage is reachable. Nil means always healthy.
	Health         func(ctx context.Context) error
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

type handler struct {
	svc    *service.Service
	health func(ctx context.Context) error
	logger *zap.Logger
}

// NewRouter builds the HTTP handler with its middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	h := &handler{svc: deps.Service, health: deps.Health, logger: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.healthCheck)

	mux.HandleFunc("POST /api/ai/analyze", h.analyze)

	mux.HandleFunc("POST /api/volunteer/create", h.createVolunteer)
	mux.HandleFunc("GET /api/volunteer/{id}", h.getVolunteer)
	mux.HandleFunc("PUT /api/volunteer/{id}/interest", h.updateInterest)
	mux.HandleFunc("GET /api/volunteer/{id}/opportunities", h.opportunities)
	mux.HandleFunc("GET /api/volunteer/{id}/interviews", h.interviews)

	mux.HandleFunc("POST /api/ngo/create", h.createNeed)
	mux.HandleFunc("POST /api/ngo/match", h.findMatches)
	mux.HandleFunc("GET /api/ngo", h.listNeeds)
	mux.HandleFunc("GET /api/ngo/{id}", h.getNeed)
	mux.HandleFunc("DELETE /api/ngo/{id}", h.deleteNeed)
	mux.HandleFunc("GET /api/ngo/{id}/applications", h.applications)

	mux.HandleFunc("POST /api/match/generate", h.generateMatch)

	mux.HandleFunc("POST /api/applications", h.apply)
	mux.HandleFunc("POST /api/applications/{id}/interview", h.scheduleInterview)
	mux.HandleFunc("DELETE /api/applications/{id}/interview", h.cancelInterview)

	mux.HandleFunc("POST /api/impact/estimate", h.estimateImpact)
	mux.HandleFunc("GET /api/impact/skills", h.impactSkills)

	timeout := deps.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	return Chain(mux,
		RequestID(log),
		Logging(log),
		Recover(log),
		BodyLimit(maxBodyBytes),
		Timeout(timeout),
		TagMemo,
	)
}
