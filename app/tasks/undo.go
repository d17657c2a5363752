package tasks

import (
	"sync"
	"time"
)

// UndoWindow is how long an add stays reversible.
const UndoWindow = 5 * time.Minute

type UndoAction string

const (
	UndoAdd      UndoAction = "add"
	UndoComplete UndoAction = "complete"
	UndoDelete   UndoAction = "delete"
)

type UndoRecord struct {
	Action UndoAction
	Texts  []string
	At     time.Time
}

// Ledger holds the single most recent mutating action. Every mutation
// overwrites the slot, so an irreversible operation correctly blocks undo of
// anything before it. The ledger is injected into the engine, never held as
// package state.
type Ledger struct {
	mu  sync.Mutex
	rec *UndoRecord
	now func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

func (l *Ledger) Record(action UndoAction, texts []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rec = &UndoRecord{Action: action, Texts: texts, At: l.now()}
}

// Peek returns the current record. expired reports a record that exists but
// fell out of the undo window, so callers can phrase that case distinctly
// from an empty slot.
func (l *Ledger) Peek() (rec UndoRecord, ok, expired bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rec == nil {
		return UndoRecord{}, false, false
	}
	if l.now().Sub(l.rec.At) > UndoWindow {
		return *l.rec, false, true
	}
	return *l.rec, true, false
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rec = nil
}
