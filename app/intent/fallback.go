package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

// fallbackRule pairs a predicate with its handler. Rules run in slice order;
// the first match wins, so each rule stays independently testable.
type fallbackRule struct {
	name   string
	match  func(text string) (args []string, ok bool)
	handle func(ctx context.Context, r *Resolver, requester string, args []string) string
}

// \b is ASCII-only in RE2, so updateKeywords spells out letter-class edges
// for the keywords that start or end in an umlaut.
var (
	showPattern     = regexp.MustCompile(`(?i)\b(liste|aufgaben|zeig|was steht|was gibt|show|list|todos?)\b`)
	completeLead    = regexp.MustCompile(`(?i)^(?:erledigt|fertig|done|abgehakt|abhaken|check)[:\s]+(.+)$`)
	completeTrail   = regexp.MustCompile(`(?i)^(.+?)\s+(?:ist\s+|sind\s+)?(?:erledigt|fertig|done|geschafft)[.!]*$`)
	deletePattern   = regexp.MustCompile(`(?i)^(?:lösche|loesche|entferne|streiche|delete|remove)[:\s]+(.+)$`)
	undoPattern     = regexp.MustCompile(`(?i)\b(rückgängig|rueckgaengig|undo)\b`)
	updateKeywords  = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(ändere|aendere|umbenennen|verschiebe|update|ändern)(?:[^\p{L}]|$)`)
	addLeadPattern  = regexp.MustCompile(`(?i)^(?:füge|fuege|add)\s+(.+?)\s+(?:hinzu|dazu)$`)
	addLeadPattern2 = regexp.MustCompile(`(?i)^(?:neue aufgabe|todo|aufgabe)[:\s]+(.+)$`)
)

// fallbackRules is the fixed priority order: list/show before completion,
// completion before deletion, guidance last before the default.
var fallbackRules = []fallbackRule{
	{
		name: "show",
		match: func(text string) ([]string, bool) {
			return nil, showPattern.MatchString(text)
		},
		handle: func(ctx context.Context, r *Resolver, _ string, _ []string) string {
			list, err := r.engine.List(ctx, tasks.Filter{})
			if err != nil {
				return errorReply(err)
			}
			return tasks.FormatList(list, tasks.Filter{})
		},
	},
	{
		name: "complete",
		match: func(text string) ([]string, bool) {
			if m := completeLead.FindStringSubmatch(text); m != nil {
				return m[1:], true
			}
			if m := completeTrail.FindStringSubmatch(text); m != nil {
				return m[1:], true
			}
			return nil, false
		},
		handle: func(ctx context.Context, r *Resolver, _ string, args []string) string {
			text, err := r.engine.CompleteOne(ctx, args[0])
			if err != nil {
				return errorReply(err)
			}
			return fmt.Sprintf("✅ Erledigt: %s", text)
		},
	},
	{
		name: "delete",
		match: func(text string) ([]string, bool) {
			if m := deletePattern.FindStringSubmatch(text); m != nil {
				return m[1:], true
			}
			return nil, false
		},
		handle: func(ctx context.Context, r *Resolver, _ string, args []string) string {
			text, err := r.engine.DeleteOne(ctx, args[0])
			if err != nil {
				return errorReply(err)
			}
			return fmt.Sprintf("🗑 Gelöscht: %s", text)
		},
	},
	{
		name: "undo",
		match: func(text string) ([]string, bool) {
			return nil, undoPattern.MatchString(text)
		},
		handle: func(ctx context.Context, r *Resolver, _ string, _ []string) string {
			outcome, err := r.engine.Undo(ctx)
			if err != nil {
				return errorReply(err)
			}
			return tasks.FormatUndo(outcome)
		},
	},
	{
		name: "add",
		match: func(text string) ([]string, bool) {
			if m := addLeadPattern.FindStringSubmatch(text); m != nil {
				return m[1:], true
			}
			if m := addLeadPattern2.FindStringSubmatch(text); m != nil {
				return m[1:], true
			}
			return nil, false
		},
		handle: func(ctx context.Context, r *Resolver, requester string, args []string) string {
			res, err := r.engine.Add(ctx, requester, []tasks.Candidate{{Text: args[0]}})
			if err != nil {
				return errorReply(err)
			}
			return tasks.FormatAdd(res)
		},
	},
	{
		// Field updates need structured extraction; without the model the
		// rule only gives guidance instead of guessing.
		name: "update-guidance",
		match: func(text string) ([]string, bool) {
			return nil, updateKeywords.MatchString(text)
		},
		handle: func(context.Context, *Resolver, string, []string) string {
			return "Zum Ändern einer Aufgabe sag mir bitte Aufgabe und neues Feld, z. B.: „ändere Einkaufen auf Samstag“ — gerade kann ich das nur mit Hilfe des Assistenten."
		},
	},
}

// fallback applies the deterministic rules when the reasoning capability is
// unavailable. It never panics and never surfaces an internal error.
func (r *Resolver) fallback(ctx context.Context, text, requester string) string {
	trimmed := strings.TrimSpace(text)
	for _, rule := range fallbackRules {
		if args, ok := rule.match(trimmed); ok {
			return rule.handle(ctx, r, requester, args)
		}
	}
	return "Das habe ich leider nicht verstanden. Sag z. B. „zeig die Liste“ oder „Milch kaufen erledigt“."
}
