package store

import (
	"context"

	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

var _ tasks.Store = Unavailable{}

// Unavailable stands in when no backend could be set up. Every call fails
// with ErrUnavailable, which the resolver turns into the apology reply, so
// the bot keeps answering instead of crashing.
type Unavailable struct{}

func (Unavailable) ListActive(context.Context) ([]tasks.Task, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Append(context.Context, []tasks.Task) error {
	return ErrUnavailable
}

func (Unavailable) Update(context.Context, int, tasks.Task) error {
	return ErrUnavailable
}

func (Unavailable) Clear(context.Context, int) error {
	return ErrUnavailable
}
