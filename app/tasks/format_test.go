package tasks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatListEmptyUnfiltered(t *testing.T) {
	got := FormatList(nil, Filter{})
	assert.Contains(t, got, "Alles erledigt")
}

func TestFormatListEmptyFilteredNamesFilter(t *testing.T) {
	got := FormatList(nil, Filter{Person: "Jeremy", Location: "Rewe"})
	assert.Contains(t, got, "Jeremy")
	assert.Contains(t, got, "Rewe")
	assert.NotContains(t, got, "Alles erledigt")
}

func TestFormatListSharedBlockFirst(t *testing.T) {
	ts := []Task{
		{Text: "Jeremys Aufgabe", Assignee: "Jeremy", Category: CategoryWork, Status: StatusPending},
		{Text: "Gemeinsame Aufgabe", Assignee: SharedMarker, Category: CategoryBoth, Status: StatusPending},
	}
	got := FormatList(ts, Filter{})
	shared := strings.Index(got, "Gemeinsam")
	personal := strings.Index(got, "Arbeit")
	assert.Greater(t, shared, -1)
	assert.Greater(t, personal, shared, "shared block must come first")
}

func TestFormatListSuffixes(t *testing.T) {
	ts := []Task{{
		Text: "Milch kaufen", Assignee: "Jeremy", Location: "Rewe",
		When: "2026-08-31", Category: CategoryShopping, Status: StatusPending,
	}}
	got := FormatList(ts, Filter{})
	assert.Contains(t, got, "📍Rewe")
	assert.Contains(t, got, "📅2026-08-31")
	assert.Contains(t, got, "(Jeremy)")

	// A person-filtered view drops the person suffix.
	filtered := FormatList(ts, Filter{Person: "Jeremy"})
	assert.NotContains(t, filtered, "(Jeremy)")
}

func TestFormatListSharedTaskHasNoPersonSuffix(t *testing.T) {
	ts := []Task{{Text: "Putzen", Assignee: SharedMarker, Category: CategoryBoth, Status: StatusPending}}
	got := FormatList(ts, Filter{})
	assert.NotContains(t, got, "("+SharedMarker+")")
}

func TestFormatListUnknownCategoriesStableOrder(t *testing.T) {
	ts := []Task{
		{Text: "Reifen wechseln", Assignee: "Jeremy", Category: "garage", Status: StatusPending},
		{Text: "Beet umgraben", Assignee: "Franzi", Category: "garten", Status: StatusPending},
	}
	first := FormatList(ts, Filter{})
	assert.Less(t, strings.Index(first, "Garage"), strings.Index(first, "Garten"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FormatList(ts, Filter{}))
	}
}

func TestFormatTree(t *testing.T) {
	ts := []Task{
		{Text: "Milch", Assignee: SharedMarker, Category: CategoryShopping, Status: StatusPending},
		{Text: "Bericht", Assignee: "Jeremy", Category: CategoryWork, Status: StatusPending},
		{Text: "Reifen wechseln", Assignee: "Jeremy", Category: "garage", Status: StatusPending},
	}
	got := FormatTree(ts)
	assert.Contains(t, got, "Aufgaben")
	assert.Contains(t, got, "Milch")
	assert.Contains(t, got, "Bericht")
	assert.Contains(t, got, "Reifen wechseln")
}

func TestFormatAdd(t *testing.T) {
	assert.Contains(t, FormatAdd(AddResult{Added: 1, Texts: []string{"Milch kaufen"}}), "Milch kaufen")
	assert.Contains(t, FormatAdd(AddResult{Skipped: 2}), "schon alles")
	assert.Contains(t, FormatAdd(AddResult{Added: 3, Shared: 2, Personal: 1, Texts: []string{"a", "b", "c"}}), "3 Aufgaben")
}

func TestFormatUndo(t *testing.T) {
	assert.Contains(t, FormatUndo(UndoOutcome{Status: UndoNothing}), "nichts")
	assert.Contains(t, FormatUndo(UndoOutcome{Status: UndoExpired}), "5 Minuten")
	assert.Contains(t, FormatUndo(UndoOutcome{Status: UndoIrreversible, Action: UndoComplete}), "Erledigte")
	assert.Contains(t, FormatUndo(UndoOutcome{Status: UndoReverted, Reverted: 2}), "2 Aufgaben")
}
