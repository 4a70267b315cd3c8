package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type QueryBuilder struct {
	strings.Builder
}

func (builder *QueryBuilder) WriteInt(i int) {
	builder.WriteString(strconv.Itoa(i))
}

// Must only be called after calling ValidateIdentifier on the given identifier.
func (builder *QueryBuilder) WriteIdentifier(identifier string) {
	builder.WriteRune('"')
	builder.WriteString(identifier)
	builder.WriteRune('"')
}

func (builder *QueryBuilder) WriteSortOrder(sortOrder SortOrder) (ok bool) {
	switch sortOrder {
	case SortOrderAscending:
		builder.WriteString("ASC")
	case SortOrderDescending:
		builder.WriteString("DESC")
	default:
		return false
	}

	return true
}

// ValidateIdentifier accepts plain SQL identifiers: a letter or underscore followed by
// letters, digits and underscores.
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return errors.New("identifier is blank")
	}

	for i, char := range identifier {
		if char == '_' || unicode.IsLetter(char) || (i > 0 && unicode.IsDigit(char)) {
			continue
		}
		return fmt.Errorf("'%s' is not a valid identifier (unexpected '%c')", identifier, char)
	}

	return nil
}

// ValidateFragment checks opaque SQL text from the definition (expressions, filters, order
// keys). Statement separators outside single-quoted literals are rejected so a fragment can
// never end the compiled query.
func ValidateFragment(fragment string) error {
	quoted := false
	for _, char := range fragment {
		switch {
		case char == '\'':
			quoted = !quoted
		case char == ';' && !quoted:
			return fmt.Errorf("'%s' contains ';', which is not allowed in query fragments", fragment)
		}
	}
	if quoted {
		return fmt.Errorf("'%s' has an unterminated string literal", fragment)
	}

	return nil
}
