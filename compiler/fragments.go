package compiler

import (
	"hermannm.dev/enumnames"
)

type SortOrder int8

const (
	SortOrderAscending SortOrder = iota + 1
	SortOrderDescending
)

var sortOrderMap = enumnames.NewMap(map[SortOrder]string{
	SortOrderAscending:  "ASC",
	SortOrderDescending: "DESC",
})

func (sortOrder SortOrder) IsValid() bool {
	return sortOrderMap.GetNameOrFallback(sortOrder, "") != ""
}

func (sortOrder SortOrder) String() string {
	return sortOrderMap.GetNameOrFallback(sortOrder, "INVALID_SORT_ORDER")
}

func (sortOrder SortOrder) MarshalJSON() ([]byte, error) {
	return sortOrderMap.MarshalToNameJSON(sortOrder)
}

func (sortOrder *SortOrder) UnmarshalJSON(bytes []byte) error {
	return sortOrderMap.UnmarshalFromNameJSON(bytes, sortOrder)
}

// SelectItem is one entry of the select list. Identifier items are quoted, expression
// items are written verbatim.
type SelectItem struct {
	Expression   string
	IsIdentifier bool
	Alias        string
}

func (item SelectItem) writeTo(query *QueryBuilder) {
	if item.IsIdentifier {
		query.WriteIdentifier(item.Expression)
	} else {
		query.WriteString(item.Expression)
	}

	if item.Alias != "" {
		query.WriteString(" AS ")
		query.WriteIdentifier(item.Alias)
	}
}

// Predicate is a boolean SQL fragment. The zero value is the empty predicate, which is left
// out of the query.
type Predicate struct {
	sql      string
	compound bool
}

// RawPredicate wraps an opaque filter fragment from the definition.
func RawPredicate(sql string) Predicate {
	return Predicate{sql: sql, compound: true}
}

func IsNotNull(identifier string) Predicate {
	var query QueryBuilder
	query.WriteIdentifier(identifier)
	query.WriteString(" IS NOT NULL")
	return Predicate{sql: query.String()}
}

func NotEqualsText(identifier string, value string) Predicate {
	var query QueryBuilder
	query.WriteIdentifier(identifier)
	query.WriteString(" != '")
	query.WriteString(value)
	query.WriteRune('\'')
	return Predicate{sql: query.String()}
}

// And joins the given predicates, skipping empty ones. Compound operands are parenthesized
// so that each keeps its own precedence.
func And(predicates ...Predicate) Predicate {
	nonEmpty := make([]Predicate, 0, len(predicates))
	for _, predicate := range predicates {
		if !predicate.IsEmpty() {
			nonEmpty = append(nonEmpty, predicate)
		}
	}

	switch len(nonEmpty) {
	case 0:
		return Predicate{}
	case 1:
		return nonEmpty[0]
	}

	var query QueryBuilder
	for i, predicate := range nonEmpty {
		if i != 0 {
			query.WriteString(" AND ")
		}
		if predicate.compound {
			query.WriteRune('(')
			query.WriteString(predicate.sql)
			query.WriteRune(')')
		} else {
			query.WriteString(predicate.sql)
		}
	}
	return Predicate{sql: query.String(), compound: true}
}

func (predicate Predicate) IsEmpty() bool {
	return predicate.sql == ""
}

func (predicate Predicate) String() string {
	return predicate.sql
}

// OrderTerm is one ORDER BY key. Terms without a sort order are caller-provided keys that
// already carry their direction.
type OrderTerm struct {
	Expression   string
	IsIdentifier bool
	SortOrder    SortOrder
}

func (term OrderTerm) writeTo(query *QueryBuilder) {
	if term.IsIdentifier {
		query.WriteIdentifier(term.Expression)
	} else {
		query.WriteString(term.Expression)
	}

	if term.SortOrder != 0 {
		query.WriteRune(' ')
		query.WriteSortOrder(term.SortOrder)
	}
}

type Limit int

// statement is the assembled SELECT. Each clause is written only if it has content.
type statement struct {
	selectList []SelectItem
	from       string
	where      Predicate
	groupBy    int
	having     Predicate
	orderBy    []OrderTerm
	limit      Limit
}

func (stmt statement) String() string {
	var query QueryBuilder

	query.WriteString("SELECT\n  ")
	for i, item := range stmt.selectList {
		if i != 0 {
			query.WriteString("\n  , ")
		}
		item.writeTo(&query)
	}

	query.WriteString("\nFROM ")
	query.WriteIdentifier(stmt.from)

	if !stmt.where.IsEmpty() {
		query.WriteString("\nWHERE ")
		query.WriteString(stmt.where.String())
	}

	if stmt.groupBy > 0 {
		query.WriteString("\nGROUP BY ")
		for i := 1; i <= stmt.groupBy; i++ {
			if i != 1 {
				query.WriteString(", ")
			}
			query.WriteInt(i)
		}
	}

	if !stmt.having.IsEmpty() {
		query.WriteString("\nHAVING ")
		query.WriteString(stmt.having.String())
	}

	if len(stmt.orderBy) != 0 {
		query.WriteString("\nORDER BY ")
		for i, term := range stmt.orderBy {
			if i != 0 {
				query.WriteString(", ")
			}
			term.writeTo(&query)
		}
	}

	if stmt.limit > 0 {
		query.WriteString("\nLIMIT ")
		query.WriteInt(int(stmt.limit))
	}

	return query.String()
}
