package controllers

import (
	"context"
	"time"
)

// Event is one message on a sync progress stream. A stream carries zero or
// more progress events and ends with exactly one terminal event: done or
// error.
type Event struct {
	Stage   string `json:"stage,omitempty"`
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
	Percent int    `json:"percent,omitempty"`
	Message string `json:"message,omitempty"`

	Done  bool   `json:"done,omitempty"`
	Count int    `json:"count,omitempty"`
	Error string `json:"error,omitempty"`
}

// ProgressFunc receives progress events as the pipeline advances. It is
// called from the goroutine running the pipeline and must not block for
// long; HTTP handlers flush each event to the client as it arrives.
type ProgressFunc func(Event)

// DoneEvent builds the terminal success event
func DoneEvent(count int) Event {
	return Event{Done: true, Count: count, Percent: 100}
}

// ErrorEvent builds the terminal failure event
func ErrorEvent(err error) Event {
	return Event{Error: err.Error()}
}

// sleepCtx pauses between outbound calls without ignoring cancellation
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
