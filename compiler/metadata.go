package compiler

import (
	"strings"

	"hermannm.dev/enumnames"
)

// Reserved prefix for metadata columns. Measure aliases may not use it.
const MetadataPrefix = "metadata_"

type MetadataKind uint8

const (
	MetadataAvg MetadataKind = iota + 1
	MetadataMedian
	MetadataStdDev
	MetadataTop3
	MetadataBottom3
	MetadataExceedsCap
	MetadataMinCreated
	MetadataMaxCreated
	MetadataReference
)

var metadataKindNames = enumnames.NewMap(map[MetadataKind]string{
	MetadataAvg:        "AVG",
	MetadataMedian:     "MEDIAN",
	MetadataStdDev:     "STDDEV",
	MetadataTop3:       "TOP_3",
	MetadataBottom3:    "BOTTOM_3",
	MetadataExceedsCap: "EXCEEDS_CAP",
	MetadataMinCreated: "MIN_CREATED",
	MetadataMaxCreated: "MAX_CREATED",
	MetadataReference:  "REFERENCE",
})

func (kind MetadataKind) IsValid() bool {
	return metadataKindNames.GetNameOrFallback(kind, "") != ""
}

func (kind MetadataKind) String() string {
	return metadataKindNames.GetNameOrFallback(kind, "INVALID_METADATA_KIND")
}

func (kind MetadataKind) MarshalJSON() ([]byte, error) {
	return metadataKindNames.MarshalToNameJSON(kind)
}

func (kind *MetadataKind) UnmarshalJSON(bytes []byte) error {
	return metadataKindNames.UnmarshalFromNameJSON(bytes, kind)
}

// MetadataColumn describes a window-function column riding along with the data columns.
// Measure is set for per-measure statistics, Field for reference fields.
type MetadataColumn struct {
	Name    string       `json:"name"`
	Kind    MetadataKind `json:"kind"`
	Measure string       `json:"measure,omitempty"`
	Field   string       `json:"field,omitempty"`
}

type metadataItem struct {
	column     MetadataColumn
	expression string
}

func (item metadataItem) selectItem() SelectItem {
	return SelectItem{Expression: item.expression, Alias: item.column.Name}
}

func measureStatistics(dimensions []string, expression string, alias string) []metadataItem {
	items := []metadataItem{
		{
			column:     MetadataColumn{Name: MetadataPrefix + "avg_" + alias, Kind: MetadataAvg, Measure: alias},
			expression: "avg(" + expression + ") OVER ()",
		},
		{
			column:     MetadataColumn{Name: MetadataPrefix + "median_" + alias, Kind: MetadataMedian, Measure: alias},
			expression: "median(" + expression + ") OVER ()",
		},
		{
			column:     MetadataColumn{Name: MetadataPrefix + "stddev_" + alias, Kind: MetadataStdDev, Measure: alias},
			expression: "stddev(" + expression + ") OVER ()",
		},
	}

	if len(dimensions) == 0 {
		return items
	}

	var tuple QueryBuilder
	tuple.WriteString("json_array(")
	for _, dimension := range dimensions {
		tuple.WriteIdentifier(dimension)
		tuple.WriteString(", ")
	}
	tuple.WriteString(expression)
	tuple.WriteRune(')')

	extreme := func(function string) string {
		var query QueryBuilder
		query.WriteString("CAST(to_json(")
		query.WriteString(function)
		query.WriteRune('(')
		query.WriteString(tuple.String())
		query.WriteString(", ")
		query.WriteString(expression)
		query.WriteString(", 3) OVER ()) AS VARCHAR)")
		return query.String()
	}

	return append(
		items,
		metadataItem{
			column:     MetadataColumn{Name: MetadataPrefix + "top_3_" + alias, Kind: MetadataTop3, Measure: alias},
			expression: extreme("max_by"),
		},
		metadataItem{
			column:     MetadataColumn{Name: MetadataPrefix + "bottom_3_" + alias, Kind: MetadataBottom3, Measure: alias},
			expression: extreme("min_by"),
		},
	)
}

func exceedsCap(rowCap int) metadataItem {
	var query QueryBuilder
	query.WriteString("sum(min(1)) OVER () > ")
	query.WriteInt(rowCap)

	return metadataItem{
		column:     MetadataColumn{Name: MetadataPrefix + "result_exceeds_cap", Kind: MetadataExceedsCap},
		expression: query.String(),
	}
}

func createdDateRange(createdField string) []metadataItem {
	window := func(function string) string {
		var query QueryBuilder
		query.WriteString(function)
		query.WriteRune('(')
		query.WriteString(function)
		query.WriteRune('(')
		query.WriteIdentifier(createdField)
		query.WriteString(")) OVER ()")
		return query.String()
	}

	return []metadataItem{
		{
			column:     MetadataColumn{Name: MetadataPrefix + "min_" + createdField, Kind: MetadataMinCreated, Field: createdField},
			expression: window("min"),
		},
		{
			column:     MetadataColumn{Name: MetadataPrefix + "max_" + createdField, Kind: MetadataMaxCreated, Field: createdField},
			expression: window("max"),
		},
	}
}

func referenceField(field string) metadataItem {
	var query QueryBuilder
	query.WriteString("min(min(nullif(")
	query.WriteIdentifier(field)
	query.WriteString(", '")
	query.WriteString(unspecifiedValue)
	query.WriteString("'))) OVER ()")

	return metadataItem{
		column:     MetadataColumn{Name: MetadataPrefix + "reference_" + field, Kind: MetadataReference, Field: field},
		expression: query.String(),
	}
}

func isReservedName(name string) bool {
	return strings.HasPrefix(name, MetadataPrefix)
}
