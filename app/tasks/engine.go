package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by name-based lookups that matched no active task.
var ErrNotFound = errors.New("task not found")

// Store is the row-oriented external store the engine runs against. Row
// numbers stay meaningful only while the store is not concurrently mutated,
// which is why every request cycle re-fetches a fresh snapshot.
type Store interface {
	// ListActive returns all rows carrying a non-empty text, in storage order.
	ListActive(ctx context.Context) ([]Task, error)
	// Append inserts rows at the first free row after the highest occupied
	// one, never leaving gaps.
	Append(ctx context.Context, ts []Task) error
	// Update rewrites the full row.
	Update(ctx context.Context, row int, t Task) error
	// Clear blanks a row without compacting subsequent row numbers.
	Clear(ctx context.Context, row int) error
}

// Candidate is one task as extracted from an utterance; every field except
// Text is optional.
type Candidate struct {
	Text     string `json:"text"`
	Person   string `json:"person,omitempty"`
	Location string `json:"location,omitempty"`
	When     string `json:"when,omitempty"`
	Category string `json:"category,omitempty"`
}

type AddResult struct {
	Added    int
	Skipped  int
	Shared   int
	Personal int
	Texts    []string
}

// Filter selects a view of the active tasks. Filtering by a person includes
// shared tasks unless ExcludeShared is set; filtering by SharedMarker shows
// only shared tasks. Location is a substring match applied on top.
type Filter struct {
	Person        string
	Location      string
	ExcludeShared bool
}

func (f Filter) Zero() bool {
	return f.Person == "" && f.Location == "" && !f.ExcludeShared
}

type UndoStatus int

const (
	UndoNothing UndoStatus = iota
	UndoExpired
	UndoIrreversible
	UndoReverted
)

type UndoOutcome struct {
	Status   UndoStatus
	Action   UndoAction
	Reverted int
}

// Engine is the CRUD surface over the task store. It owns no durable state;
// every operation works on a snapshot fetched at call time.
type Engine struct {
	store  Store
	ledger *Ledger
	policy Policy
	roster []string
	now    func() time.Time
}

func NewEngine(store Store, ledger *Ledger, policy Policy, roster []string) *Engine {
	return &Engine{
		store:  store,
		ledger: ledger,
		policy: policy,
		roster: roster,
		now:    time.Now,
	}
}

// Add validates, attributes, dedups and inserts a batch of candidates.
// Empty-text candidates and duplicates (against the active snapshot and
// within the batch itself) are skipped, not failed.
func (e *Engine) Add(ctx context.Context, requester string, candidates []Candidate) (AddResult, error) {
	var res AddResult
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return res, err
	}

	seen := make(map[string]struct{}, len(active))
	for _, t := range active {
		if !t.Done() {
			seen[t.Key()] = struct{}{}
		}
	}

	now := e.now()
	var inserts []Task
	for _, c := range candidates {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			res.Skipped++
			continue
		}

		assignee := Attribute(c.Person, requester, e.policy, e.roster)
		category := strings.ToLower(strings.TrimSpace(c.Category))
		if category == "" {
			category = CategoryGeneral
			if assignee == SharedMarker {
				category = CategoryBoth
			}
		}

		t := Task{
			Created:  now.Format(dateLayout),
			Assignee: assignee,
			Text:     text,
			Location: strings.TrimSpace(c.Location),
			When:     NormalizeWhen(c.When, now),
			Category: category,
			Status:   StatusPending,
		}

		key := t.Key()
		if _, dup := seen[key]; dup {
			res.Skipped++
			continue
		}
		seen[key] = struct{}{}
		inserts = append(inserts, t)

		res.Added++
		res.Texts = append(res.Texts, text)
		if assignee == SharedMarker {
			res.Shared++
		} else {
			res.Personal++
		}
	}

	if len(inserts) == 0 {
		return res, nil
	}
	if err := e.store.Append(ctx, inserts); err != nil {
		return AddResult{}, err
	}
	e.ledger.Record(UndoAdd, res.Texts)
	return res, nil
}

// CompleteOne marks the first active task matching the fragment as done.
// Matching is a case-insensitive substring over the task text, in store
// order. Completion is one-way: done tasks never match again.
func (e *Engine) CompleteOne(ctx context.Context, fragment string) (string, error) {
	t, err := e.findActive(ctx, fragment)
	if err != nil {
		return "", err
	}
	t.Status = StatusDone
	if err := e.store.Update(ctx, t.Row, t); err != nil {
		return "", err
	}
	e.ledger.Record(UndoComplete, []string{t.Text})
	return t.Text, nil
}

// CompleteAll transitions every active task to done. The ledger records an
// irreversible marker so a stale add cannot be undone past the bulk
// operation.
func (e *Engine) CompleteAll(ctx context.Context) (int, error) {
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range active {
		if t.Done() {
			continue
		}
		t.Status = StatusDone
		if err := e.store.Update(ctx, t.Row, t); err != nil {
			return count, err
		}
		count++
	}
	if count > 0 {
		e.ledger.Record(UndoComplete, nil)
	}
	return count, nil
}

// DeleteOne clears the row of the first active task matching the fragment.
func (e *Engine) DeleteOne(ctx context.Context, fragment string) (string, error) {
	t, err := e.findActive(ctx, fragment)
	if err != nil {
		return "", err
	}
	if err := e.store.Clear(ctx, t.Row); err != nil {
		return "", err
	}
	e.ledger.Record(UndoDelete, []string{t.Text})
	return t.Text, nil
}

// DeleteAll clears every active task, highest row first so earlier clears
// cannot shift the rows still queued.
func (e *Engine) DeleteAll(ctx context.Context) (int, error) {
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	var rows []int
	for _, t := range active {
		if !t.Done() {
			rows = append(rows, t.Row)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))
	for _, row := range rows {
		if err := e.store.Clear(ctx, row); err != nil {
			return 0, err
		}
	}
	if len(rows) > 0 {
		e.ledger.Record(UndoDelete, nil)
	}
	return len(rows), nil
}

// UpdateOne merges the provided fields over the first matching active task
// and rewrites the full row. Empty fields are left untouched; When and
// Person are re-normalized on the way in.
func (e *Engine) UpdateOne(ctx context.Context, requester, fragment string, fields Candidate) (string, error) {
	t, err := e.findActive(ctx, fragment)
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(fields.Text); v != "" {
		t.Text = v
	}
	if v := strings.TrimSpace(fields.Person); v != "" {
		t.Assignee = Attribute(v, requester, e.policy, e.roster)
	}
	if v := strings.TrimSpace(fields.Location); v != "" {
		t.Location = v
	}
	if v := strings.TrimSpace(fields.When); v != "" {
		t.When = NormalizeWhen(v, e.now())
	}
	if v := strings.ToLower(strings.TrimSpace(fields.Category)); v != "" {
		t.Category = v
	}
	if err := e.store.Update(ctx, t.Row, t); err != nil {
		return "", err
	}
	return t.Text, nil
}

// List returns the active tasks selected by the filter, in store order.
func (e *Engine) List(ctx context.Context, f Filter) ([]Task, error) {
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var out []Task
	for _, t := range active {
		if t.Done() {
			continue
		}
		if !matchesPerson(t, f) {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(t.Location), strings.ToLower(f.Location)) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func matchesPerson(t Task, f Filter) bool {
	switch {
	case f.Person == "":
		return !(f.ExcludeShared && t.Shared())
	case strings.EqualFold(f.Person, SharedMarker):
		return t.Shared()
	case t.Shared():
		return !f.ExcludeShared
	default:
		return strings.EqualFold(t.Assignee, f.Person)
	}
}

// Reconcile removes later duplicates of the duplicate-identity tuple among
// active tasks, keeping the first occurrence. Idempotent: a second
// consecutive run removes nothing.
func (e *Engine) Reconcile(ctx context.Context) (int, error) {
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(active))
	var dupRows []int
	for _, t := range active {
		if t.Done() {
			continue
		}
		key := t.Key()
		if _, ok := seen[key]; ok {
			dupRows = append(dupRows, t.Row)
			continue
		}
		seen[key] = struct{}{}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(dupRows)))
	for _, row := range dupRows {
		if err := e.store.Clear(ctx, row); err != nil {
			return 0, err
		}
	}
	return len(dupRows), nil
}

// Undo reverts the last add if it is still inside the undo window. Complete
// and delete are reported as irreversible without clearing the slot, so an
// irreversible operation keeps blocking undo of anything before it.
func (e *Engine) Undo(ctx context.Context) (UndoOutcome, error) {
	rec, ok, expired := e.ledger.Peek()
	if expired {
		// Only an add was ever undoable, so only its expiry mentions the
		// window; an aged complete/delete reads as nothing to undo.
		if rec.Action == UndoAdd {
			return UndoOutcome{Status: UndoExpired, Action: rec.Action}, nil
		}
		return UndoOutcome{Status: UndoNothing}, nil
	}
	if !ok {
		return UndoOutcome{Status: UndoNothing}, nil
	}
	if rec.Action != UndoAdd {
		return UndoOutcome{Status: UndoIrreversible, Action: rec.Action}, nil
	}

	reverted := 0
	for _, text := range rec.Texts {
		if _, err := e.DeleteOne(ctx, text); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return UndoOutcome{}, err
		}
		reverted++
	}
	e.ledger.Clear()
	return UndoOutcome{Status: UndoReverted, Action: UndoAdd, Reverted: reverted}, nil
}

func (e *Engine) findActive(ctx context.Context, fragment string) (Task, error) {
	if strings.TrimSpace(fragment) == "" {
		return Task{}, fmt.Errorf("%w: empty name", ErrNotFound)
	}
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return Task{}, err
	}
	for _, t := range active {
		if t.Done() {
			continue
		}
		// Tie-break between multiple substring matches: store order,
		// first match wins.
		if matchesFragment(t, fragment) {
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(fragment))
}
