package tasks

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoster = []string{"Jeremy", "Franzi"}

type memStore struct {
	rows    map[int]Task
	cleared []int
}

func newMemStore(ts ...Task) *memStore {
	s := &memStore{rows: make(map[int]Task)}
	for _, t := range ts {
		s.rows[t.Row] = t
	}
	return s
}

func (s *memStore) ListActive(_ context.Context) ([]Task, error) {
	var rows []int
	for row, t := range s.rows {
		if t.Text != "" {
			rows = append(rows, row)
		}
	}
	sort.Ints(rows)
	out := make([]Task, 0, len(rows))
	for _, row := range rows {
		t := s.rows[row]
		t.Row = row
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) Append(_ context.Context, ts []Task) error {
	next := 1
	for row := range s.rows {
		if row >= next {
			next = row + 1
		}
	}
	for _, t := range ts {
		t.Row = next
		s.rows[next] = t
		next++
	}
	return nil
}

func (s *memStore) Update(_ context.Context, row int, t Task) error {
	t.Row = row
	s.rows[row] = t
	return nil
}

func (s *memStore) Clear(_ context.Context, row int) error {
	delete(s.rows, row)
	s.cleared = append(s.cleared, row)
	return nil
}

func newTestEngine(s Store, policy Policy) *Engine {
	return NewEngine(s, NewLedger(), policy, testRoster)
}

func activeTexts(t *testing.T, e *Engine) []string {
	t.Helper()
	ts, err := e.List(context.Background(), Filter{})
	require.NoError(t, err)
	var texts []string
	for _, task := range ts {
		texts = append(texts, task.Text)
	}
	return texts
}

func TestAddDefaultsToSharedAndPromotesCategory(t *testing.T) {
	e := newTestEngine(newMemStore(), PolicyShared)
	res, err := e.Add(context.Background(), "Jeremy", []Candidate{{Text: "Müll rausbringen"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Shared)

	ts, err := e.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, SharedMarker, ts[0].Assignee)
	assert.Equal(t, CategoryBoth, ts[0].Category)
	assert.Equal(t, StatusPending, ts[0].Status)
}

func TestAddDefaultsToRequesterUnderRequesterPolicy(t *testing.T) {
	e := newTestEngine(newMemStore(), PolicyRequester)
	_, err := e.Add(context.Background(), "jeremy", []Candidate{{Text: "Reifen wechseln"}})
	require.NoError(t, err)

	ts, err := e.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "Jeremy", ts[0].Assignee)
	assert.Equal(t, CategoryGeneral, ts[0].Category)
}

func TestAddSkipsEmptyAndBatchDuplicates(t *testing.T) {
	e := newTestEngine(newMemStore(), PolicyShared)
	res, err := e.Add(context.Background(), "Jeremy", []Candidate{
		{Text: "Milch kaufen"},
		{Text: "   "},
		{Text: "milch  kaufen"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 2, res.Skipped)
}

func TestAddSkipsExistingDuplicate(t *testing.T) {
	store := newMemStore(Task{Row: 2, Text: "Milch kaufen", Assignee: SharedMarker, Status: StatusPending})
	e := newTestEngine(store, PolicyShared)
	res, err := e.Add(context.Background(), "Jeremy", []Candidate{{Text: "Milch kaufen"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"Milch kaufen"}, activeTexts(t, e))
}

func TestAddDifferentAssigneeIsNotADuplicate(t *testing.T) {
	store := newMemStore(Task{Row: 2, Text: "Milch kaufen", Assignee: SharedMarker, Status: StatusPending})
	e := newTestEngine(store, PolicyShared)
	res, err := e.Add(context.Background(), "Jeremy", []Candidate{{Text: "Milch kaufen", Person: "ich"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
}

func TestCompleteIsOneWay(t *testing.T) {
	store := newMemStore(Task{Row: 2, Text: "Bad putzen", Assignee: "Franzi", Status: StatusPending})
	e := newTestEngine(store, PolicyShared)

	text, err := e.CompleteOne(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, "Bad putzen", text)

	_, err = e.CompleteOne(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.DeleteOne(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteFirstMatchInStoreOrder(t *testing.T) {
	store := newMemStore(
		Task{Row: 4, Text: "Auto waschen", Status: StatusPending},
		Task{Row: 2, Text: "Auto tanken", Status: StatusPending},
	)
	e := newTestEngine(store, PolicyShared)
	text, err := e.CompleteOne(context.Background(), "auto")
	require.NoError(t, err)
	assert.Equal(t, "Auto tanken", text)
}

func TestDeleteAllClearsDescending(t *testing.T) {
	store := newMemStore(
		Task{Row: 5, Text: "a", Status: StatusPending},
		Task{Row: 6, Text: "b", Status: StatusPending},
		Task{Row: 7, Text: "c", Status: StatusPending},
	)
	e := newTestEngine(store, PolicyShared)
	count, err := e.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, []int{7, 6, 5}, store.cleared)
	assert.Empty(t, activeTexts(t, e))
}

func TestCompleteAll(t *testing.T) {
	store := newMemStore(
		Task{Row: 2, Text: "a", Status: StatusPending},
		Task{Row: 3, Text: "b", Status: StatusDone},
		Task{Row: 4, Text: "c", Status: StatusPending},
	)
	e := newTestEngine(store, PolicyShared)
	count, err := e.CompleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, activeTexts(t, e))
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	store := newMemStore(Task{
		Row: 2, Text: "Einkaufen", Assignee: SharedMarker,
		Location: "Rewe", Category: CategoryShopping, Status: StatusPending,
	})
	e := newTestEngine(store, PolicyShared)
	e.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) } // a Monday

	_, err := e.UpdateOne(context.Background(), "Jeremy", "einkaufen", Candidate{Person: "ich", When: "Montag"})
	require.NoError(t, err)

	got := store.rows[2]
	assert.Equal(t, "Einkaufen", got.Text)
	assert.Equal(t, "Jeremy", got.Assignee)
	assert.Equal(t, "Rewe", got.Location)
	assert.Equal(t, "2026-08-31", got.When)
	assert.Equal(t, CategoryShopping, got.Category)
}

func TestListPersonFilterIncludesSharedByDefault(t *testing.T) {
	store := newMemStore(
		Task{Row: 2, Text: "gemeinsam", Assignee: SharedMarker, Status: StatusPending},
		Task{Row: 3, Text: "jeremys", Assignee: "Jeremy", Status: StatusPending},
		Task{Row: 4, Text: "franzis", Assignee: "Franzi", Status: StatusPending},
	)
	e := newTestEngine(store, PolicyShared)

	ts, err := e.List(context.Background(), Filter{Person: "Jeremy"})
	require.NoError(t, err)
	require.Len(t, ts, 2)

	strict, err := e.List(context.Background(), Filter{Person: "Jeremy", ExcludeShared: true})
	require.NoError(t, err)
	require.Len(t, strict, 1)
	assert.Equal(t, "jeremys", strict[0].Text)
	assert.LessOrEqual(t, len(strict), len(ts))

	shared, err := e.List(context.Background(), Filter{Person: SharedMarker})
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "gemeinsam", shared[0].Text)
}

func TestListLocationFilterComposesWithPerson(t *testing.T) {
	store := newMemStore(
		Task{Row: 2, Text: "Milch", Assignee: "Jeremy", Location: "Rewe", Status: StatusPending},
		Task{Row: 3, Text: "Brot", Assignee: "Jeremy", Location: "Bäcker", Status: StatusPending},
		Task{Row: 4, Text: "Wein", Assignee: "Franzi", Location: "Rewe", Status: StatusPending},
	)
	e := newTestEngine(store, PolicyShared)
	ts, err := e.List(context.Background(), Filter{Person: "Jeremy", Location: "rewe"})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "Milch", ts[0].Text)
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newMemStore(
		Task{Row: 2, Text: "Milch kaufen", Assignee: SharedMarker, Status: StatusPending},
		Task{Row: 3, Text: "milch kaufen", Assignee: SharedMarker, Status: StatusPending},
		Task{Row: 4, Text: "Milch kaufen", Assignee: "Jeremy", Status: StatusPending},
	)
	e := newTestEngine(store, PolicyShared)

	removed, err := e.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = e.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestReconcileKeepsFirstOccurrence(t *testing.T) {
	store := newMemStore(
		Task{Row: 2, Text: "Staubsaugen", Assignee: SharedMarker, Status: StatusPending},
		Task{Row: 5, Text: "staubsaugen", Assignee: SharedMarker, Status: StatusPending},
	)
	e := newTestEngine(store, PolicyShared)
	_, err := e.Reconcile(context.Background())
	require.NoError(t, err)

	ts, err := e.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, 2, ts[0].Row)
}

type failingStore struct{ err error }

func (s failingStore) ListActive(context.Context) ([]Task, error) { return nil, s.err }
func (s failingStore) Append(context.Context, []Task) error       { return s.err }
func (s failingStore) Update(context.Context, int, Task) error    { return s.err }
func (s failingStore) Clear(context.Context, int) error           { return s.err }

func TestEnginePropagatesStoreErrors(t *testing.T) {
	wantErr := errors.New("store offline")
	e := newTestEngine(failingStore{err: wantErr}, PolicyShared)

	_, err := e.Add(context.Background(), "Jeremy", []Candidate{{Text: "x"}})
	assert.ErrorIs(t, err, wantErr)
	_, err = e.List(context.Background(), Filter{})
	assert.ErrorIs(t, err, wantErr)
	_, err = e.Reconcile(context.Background())
	assert.ErrorIs(t, err, wantErr)
}
