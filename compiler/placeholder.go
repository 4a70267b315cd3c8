package compiler

import (
	"slices"
	"strings"
)

// PlaceholderToken marks a caller-location value in a filter fragment. Tokens stay in the
// compiled SQL and are only replaced by the executor, right before the query runs.
type PlaceholderToken string

const (
	PlaceholderUserLatitude  PlaceholderToken = "{user_latitude}"
	PlaceholderUserLongitude PlaceholderToken = "{user_longitude}"
)

var placeholderTokens = []PlaceholderToken{PlaceholderUserLatitude, PlaceholderUserLongitude}

// Forms lists the spellings of the token accepted in fragments, longest first so that
// replacing them in order never leaves stray braces behind.
func (token PlaceholderToken) Forms() []string {
	return []string{"{" + string(token) + "}", string(token)}
}

// FindPlaceholders returns the tokens present in the given SQL text, in declaration order.
func FindPlaceholders(sql string) []PlaceholderToken {
	var found []PlaceholderToken
	for _, token := range placeholderTokens {
		if strings.Contains(sql, string(token)) {
			found = append(found, token)
		}
	}
	return found
}

func mergePlaceholders(into []PlaceholderToken, tokens ...PlaceholderToken) []PlaceholderToken {
	for _, token := range tokens {
		if !slices.Contains(into, token) {
			into = append(into, token)
		}
	}
	return into
}
