package tasks

import (
	"strings"
)

// SharedMarker is the canonical assignee for tasks that belong to everyone.
// It is distinct from any roster name.
const SharedMarker = "Beide"

const (
	CategoryShopping  = "einkaufen"
	CategoryHousehold = "haushalt"
	CategoryPersonal  = "persönlich"
	CategoryWork      = "arbeit"
	CategoryGeneral   = "allgemein"
	// CategoryBoth is a synthetic display category for shared tasks whose
	// category was left at the default.
	CategoryBoth = "beides"
)

const (
	StatusPending = "offen"
	StatusDone    = "erledigt"
)

// Task is a fully materialized row from the backing store. Row is the
// positional identifier in the store and is only stable while the store is
// not mutated.
type Task struct {
	Row      int
	Created  string
	Assignee string
	Text     string
	Location string
	When     string
	Category string
	Status   string
}

func (t Task) Done() bool {
	return t.Status == StatusDone
}

func (t Task) Shared() bool {
	return t.Assignee == SharedMarker
}

// Key is the duplicate-identity tuple: two active tasks must never share it.
func (t Task) Key() string {
	return strings.Join([]string{
		NormalizeText(t.Text),
		strings.ToLower(strings.TrimSpace(t.Assignee)),
		strings.ToLower(strings.TrimSpace(t.Location)),
		strings.ToLower(strings.TrimSpace(t.When)),
	}, "|")
}

// NormalizeText lowercases and collapses internal whitespace so that
// "Müll  rausbringen" and "müll rausbringen" dedup against each other.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func matchesFragment(t Task, fragment string) bool {
	return strings.Contains(NormalizeText(t.Text), NormalizeText(fragment))
}
