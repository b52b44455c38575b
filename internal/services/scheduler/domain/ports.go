// Package domain declares the scheduler ports
package domain

import (
	"context"
	"time"

	perr "reviewpipe/internal/platform/errors"
	pipedom "reviewpipe/internal/services/pipeline/domain"
)

// ErrRunInFlight is returned when a trigger finds another run holding the run lock
var ErrRunInFlight = perr.New(perr.ErrorCodeConflict, "scheduler: a pipeline run is already in flight")

// Trigger sources
const (
	TriggerDaily  = "daily"
	TriggerManual = "manual"
)

// Run is the last completed run as seen by the scheduler
type Run struct {
	Trigger string         `json:"trigger"`
	Report  pipedom.Report `json:"report"`
}

// SchedulerPort is the external port of the scheduler module
type SchedulerPort interface {
	// Start polls until ctx is done, running the pipeline once per day at the configured time
	Start(ctx context.Context) error
	// Trigger starts a manual run in the background; ErrRunInFlight when busy
	Trigger(ctx context.Context, query string) error
	// Last returns the most recent finished run
	Last() (Run, bool)
	// Next returns the next daily trigger after now
	Next(now time.Time) time.Time
	// DailyQuery is the query the daily trigger runs at now
	DailyQuery(now time.Time) string
	// Wait blocks until background runs finish
	Wait()
}
