// Package store provides the row-oriented backends behind tasks.Store: a
// Google Sheets adapter (the system of record) and a local SQLite backend
// with the same row semantics. A task occupies one row of seven ordered
// columns: created, assignee, text, location, when, category, status.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

// ErrUnavailable signals that the backing store is unconfigured or
// unreachable. Callers surface it as a user-facing message, they never retry.
var ErrUnavailable = errors.New("task store unavailable")

const columnCount = 7

// toRow flattens a task into the seven-column layout.
func toRow(t tasks.Task) []any {
	return []any{t.Created, t.Assignee, t.Text, t.Location, t.When, t.Category, t.Status}
}

// fromRow decodes one stored row. Missing trailing cells default to the
// empty string, an empty status means pending. ok is false for rows without
// the required text column, which callers skip.
func fromRow(rowNum int, cells []any) (t tasks.Task, ok bool) {
	get := func(i int) string {
		if i >= len(cells) || cells[i] == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(cells[i]))
	}
	t = tasks.Task{
		Row:      rowNum,
		Created:  get(0),
		Assignee: get(1),
		Text:     get(2),
		Location: get(3),
		When:     get(4),
		Category: get(5),
		Status:   get(6),
	}
	if t.Status == "" {
		t.Status = tasks.StatusPending
	}
	return t, t.Text != ""
}

func rowOccupied(cells []any) bool {
	for _, c := range cells {
		if c != nil && strings.TrimSpace(fmt.Sprint(c)) != "" {
			return true
		}
	}
	return false
}
