package models

import (
	"context"
	"errors"

	"github.com/JeremyDillmann/task-bot-ai/app/tools"
)

// ErrUnavailable covers an absent, erroring or timed-out reasoning
// capability. Callers recover via the deterministic fallback, they never
// surface this error directly.
var ErrUnavailable = errors.New("reasoning capability unavailable")

type Interface interface {
	// Resolve runs one chat completion with the operation catalog attached,
	// at a low temperature for deterministic operation selection.
	Resolve(ctx context.Context, messages []Message, toolkit map[string]tools.Tool) (*Resolution, error)
	// Think runs a plain completion without tools, for free conversation
	// and the advisory plan / refine passes.
	Think(ctx context.Context, messages []Message, temperature float64) (string, error)
}

type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
}

// Resolution is the model's answer: either free text or one selected
// operation with raw JSON arguments, never both.
type Resolution struct {
	Content string
	Call    *ToolCall
}

type ToolCall struct {
	Name      string
	Arguments string
}
