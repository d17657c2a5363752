package tasks

import "strings"

// Policy decides who owns a task when the user attributed it to nobody.
type Policy string

const (
	// PolicyShared puts unattributed tasks on the shared list.
	PolicyShared Policy = "shared"
	// PolicyRequester assigns unattributed tasks to whoever asked.
	PolicyRequester Policy = "requester"
)

var sharedWords = map[string]struct{}{
	"beide":     {},
	"beiden":    {},
	"wir":       {},
	"uns":       {},
	"zusammen":  {},
	"gemeinsam": {},
	"both":      {},
	"we":        {},
	"us":        {},
	"together":  {},
	"shared":    {},
}

var firstPersonWords = map[string]struct{}{
	"ich":    {},
	"mir":    {},
	"mich":   {},
	"meine":  {},
	"meins":  {},
	"mein":   {},
	"i":      {},
	"me":     {},
	"my":     {},
	"mine":   {},
	"myself": {},
}

// IsFirstPerson reports whether a mention refers to the requester
// ("ich", "mir", "me", ...). The substitution with the actual requester name
// happens in the caller, keeping ResolvePerson requester-agnostic.
func IsFirstPerson(mention string) bool {
	_, ok := firstPersonWords[strings.ToLower(strings.TrimSpace(mention))]
	return ok
}

// ResolvePerson maps a free-form assignee mention to a canonical assignee:
// shared-indicator words become SharedMarker, roster names get their
// canonical capitalization, anything else passes through verbatim as an
// ad hoc name. Empty input stays empty; defaults are the caller's job.
func ResolvePerson(mention string, roster []string) string {
	trimmed := strings.TrimSpace(mention)
	if trimmed == "" {
		return ""
	}
	if _, ok := sharedWords[strings.ToLower(trimmed)]; ok {
		return SharedMarker
	}
	for _, name := range roster {
		if strings.EqualFold(name, trimmed) {
			return name
		}
	}
	return trimmed
}

// Attribute resolves a mention into the assignee that gets persisted,
// performing the requester substitution for first-person mentions and
// applying the configured default policy when the mention is absent.
func Attribute(mention, requester string, policy Policy, roster []string) string {
	trimmed := strings.TrimSpace(mention)
	if trimmed == "" {
		if policy == PolicyRequester && requester != "" {
			return ResolvePerson(requester, roster)
		}
		return SharedMarker
	}
	if IsFirstPerson(trimmed) {
		return ResolvePerson(requester, roster)
	}
	return ResolvePerson(trimmed, roster)
}
