// Package http provides the scheduler ops endpoints
package http

import (
	stdhttp "net/http"
	"time"

	"reviewpipe/internal/core/version"
	perr "reviewpipe/internal/platform/errors"
	phttp "reviewpipe/internal/platform/net/http"
	"reviewpipe/internal/services/scheduler/domain"

	"github.com/go-chi/chi/v5"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Scheduler   domain.SchedulerPort
	Now         func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the ops routes
func Register(r chi.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	r.Get("/healthz", phttp.Handle(h.health))
	r.Get("/v1/version", phttp.Handle(h.version))
	r.Get("/v1/runs/last", phttp.Handle(h.lastRun))
	r.Post("/v1/runs", phttp.Handle(h.trigger))
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool      `json:"ok"`
	Service string    `json:"service"`
	Started time.Time `json:"started"`
	NextRun time.Time `json:"next_run"`
}

// TriggerRequest is the optional body of POST /v1/runs
type TriggerRequest struct {
	Query string `json:"query" validate:"omitempty,max=4096"`
}

// TriggerResponse acknowledges a manual run
type TriggerResponse struct {
	Accepted bool   `json:"accepted"`
	Query    string `json:"query"`
}

func (h *handlers) health(*stdhttp.Request) phttp.Response {
	return phttp.OK(HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt,
		NextRun: h.deps.Scheduler.Next(h.deps.Now()),
	})
}

func (h *handlers) version(*stdhttp.Request) phttp.Response {
	return phttp.OK(version.Info(h.deps.ServiceName))
}

func (h *handlers) lastRun(*stdhttp.Request) phttp.Response {
	run, ok := h.deps.Scheduler.Last()
	if !ok {
		return phttp.Error(perr.NotFoundf("no run has finished yet"))
	}
	return phttp.OK(run)
}

func (h *handlers) trigger(r *stdhttp.Request) phttp.Response {
	req, err := phttp.ParseJSON[TriggerRequest](r)
	if err != nil {
		return phttp.Error(err)
	}
	query := req.Query
	if query == "" {
		query = h.deps.Scheduler.DailyQuery(h.deps.Now())
	}
	if err := h.deps.Scheduler.Trigger(r.Context(), query); err != nil {
		return phttp.Error(err)
	}
	return phttp.Accepted(TriggerResponse{Accepted: true, Query: query})
}
