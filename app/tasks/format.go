package tasks

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/xlab/treeprint"
)

var categoryOrder = []string{
	CategoryBoth,
	CategoryShopping,
	CategoryHousehold,
	CategoryPersonal,
	CategoryWork,
	CategoryGeneral,
}

var categoryLabels = map[string]string{
	CategoryBoth:      "👫 Gemeinsam",
	CategoryShopping:  "🛒 Einkaufen",
	CategoryHousehold: "🏠 Haushalt",
	CategoryPersonal:  "👤 Persönlich",
	CategoryWork:      "💼 Arbeit",
	CategoryGeneral:   "📝 Allgemein",
}

// FormatList renders the task list grouped by category, shared tasks first.
// The person suffix only appears in unfiltered views; a filtered empty result
// names the filter instead of celebrating.
func FormatList(ts []Task, f Filter) string {
	if len(ts) == 0 {
		if f.Zero() {
			return "Alles erledigt! 🎉 Keine offenen Aufgaben."
		}
		return "Keine Aufgaben gefunden für " + describeFilter(f) + "."
	}

	groups := groupByCategory(ts)
	var b strings.Builder
	b.WriteString("📋 Offene Aufgaben:\n")
	for _, cat := range categoryOrder {
		group, ok := groups[cat]
		if !ok {
			continue
		}
		b.WriteString("\n" + labelFor(cat) + "\n")
		for _, t := range group {
			b.WriteString(taskLine(t, f))
		}
	}
	for _, cat := range unknownCategories(groups) {
		b.WriteString("\n" + labelFor(cat) + "\n")
		for _, t := range groups[cat] {
			b.WriteString(taskLine(t, f))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTree renders the same grouping as an ASCII tree, used for the debug
// dump.
func FormatTree(ts []Task) string {
	tree := treeprint.New()
	tree.SetValue("Aufgaben")
	groups := groupByCategory(ts)
	for _, cat := range categoryOrder {
		group, ok := groups[cat]
		if !ok {
			continue
		}
		branch := tree.AddBranch(labelFor(cat))
		for _, t := range group {
			branch.AddNode(strings.TrimSpace(taskLine(t, Filter{})))
		}
	}
	for _, cat := range unknownCategories(groups) {
		branch := tree.AddBranch(labelFor(cat))
		for _, t := range groups[cat] {
			branch.AddNode(strings.TrimSpace(taskLine(t, Filter{})))
		}
	}
	return tree.String()
}

func FormatAdd(res AddResult) string {
	switch {
	case res.Added == 0 && res.Skipped > 0:
		return "Nichts hinzugefügt — das steht schon alles auf der Liste. 👍"
	case res.Added == 0:
		return "Ich habe keine Aufgabe erkannt, die ich hinzufügen könnte."
	case res.Added == 1:
		return fmt.Sprintf("✅ Hinzugefügt: %s", res.Texts[0])
	default:
		var parts []string
		if res.Shared > 0 {
			parts = append(parts, fmt.Sprintf("%d gemeinsame", res.Shared))
		}
		if res.Personal > 0 {
			parts = append(parts, fmt.Sprintf("%d persönliche", res.Personal))
		}
		return fmt.Sprintf("✅ %d Aufgaben hinzugefügt (%s).", res.Added, strings.Join(parts, ", "))
	}
}

func FormatUndo(o UndoOutcome) string {
	switch o.Status {
	case UndoReverted:
		if o.Reverted == 1 {
			return "↩️ Die letzte Aufgabe wurde wieder entfernt."
		}
		return fmt.Sprintf("↩️ %d Aufgaben wurden wieder entfernt.", o.Reverted)
	case UndoExpired:
		return "⏱ Zu spät — rückgängig geht nur innerhalb von 5 Minuten."
	case UndoIrreversible:
		if o.Action == UndoComplete {
			return "Erledigte Aufgaben lassen sich nicht rückgängig machen."
		}
		return "Gelöschte Aufgaben lassen sich nicht rückgängig machen."
	default:
		return "Es gibt nichts zum Rückgängigmachen."
	}
}

func FormatNotFound(name string) string {
	return fmt.Sprintf("Nicht gefunden: %s", name)
}

func taskLine(t Task, f Filter) string {
	var b strings.Builder
	b.WriteString("• " + t.Text)
	if t.Location != "" {
		b.WriteString(" 📍" + t.Location)
	}
	if t.When != "" {
		b.WriteString(" 📅" + t.When)
	}
	if f.Zero() && !t.Shared() && t.Assignee != "" {
		b.WriteString(" (" + t.Assignee + ")")
	}
	b.WriteString("\n")
	return b.String()
}

func describeFilter(f Filter) string {
	var parts []string
	if f.Person != "" {
		parts = append(parts, f.Person)
	}
	if f.Location != "" {
		parts = append(parts, "Ort „"+f.Location+"“")
	}
	if f.ExcludeShared {
		parts = append(parts, "ohne gemeinsame Aufgaben")
	}
	if len(parts) == 0 {
		return "diesen Filter"
	}
	return strings.Join(parts, ", ")
}

func groupByCategory(ts []Task) map[string][]Task {
	groups := make(map[string][]Task)
	for _, t := range ts {
		cat := t.Category
		if cat == "" {
			cat = CategoryGeneral
		}
		if t.Shared() && cat == CategoryGeneral {
			cat = CategoryBoth
		}
		groups[cat] = append(groups[cat], t)
	}
	return groups
}

func labelFor(cat string) string {
	if label, ok := categoryLabels[cat]; ok {
		return label
	}
	runes := []rune(cat)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return "📝 " + string(runes)
}

func knownCategory(cat string) bool {
	_, ok := categoryLabels[cat]
	return ok
}

// unknownCategories returns the ad hoc category names sorted, so repeated
// renders of the same list come out identical.
func unknownCategories(groups map[string][]Task) []string {
	var out []string
	for cat := range groups {
		if !knownCategory(cat) {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}
