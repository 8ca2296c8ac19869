// Package audit keeps a log of catalog mutations.
package audit

import (
	"context"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

// DefaultLimit caps List when the filter does not say otherwise.
const DefaultLimit = 100

// MaxLimit is the largest page List returns.
const MaxLimit = 1000

// Filter selects audit entries.
type Filter struct {
	Subject string // exact subject, empty = all
	Limit   int    // <= 0 means DefaultLimit
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	}
	return f.Limit
}

// Recorder persists and queries mutation events.
type Recorder interface {
	// Record stores e. e.ID must be set; CreatedAt is filled in by the
	// recorder.
	Record(ctx context.Context, e *model.Event) error

	// List returns matching events, newest first.
	List(ctx context.Context, f Filter) ([]*model.Event, error)

	Close() error
}

// NoopRecorder discards every event.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) Record(context.Context, *model.Event) error { return nil }

func (NoopRecorder) List(context.Context, Filter) ([]*model.Event, error) {
	return []*model.Event{}, nil
}

func (NoopRecorder) Close() error { return nil }
