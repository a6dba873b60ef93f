package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// DiffStrings compares the current and the wanted id sets and returns what
// must be added and what must be removed to reconcile them.
func DiffStrings(current, wanted []string) (toAdd, toRemove []string) {
	currSet := make(map[string]struct{}, len(current))
	for _, s := range current {
		currSet[s] = struct{}{}
	}
	wantedSet := make(map[string]struct{}, len(wanted))
	for _, s := range wanted {
		wantedSet[s] = struct{}{}
		if _, ok := currSet[s]; !ok {
			toAdd = append(toAdd, s)
		}
	}
	for _, s := range current {
		if _, ok := wantedSet[s]; !ok {
			toRemove = append(toRemove, s)
		}
	}
	return toAdd, toRemove
}
