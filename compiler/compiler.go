package compiler

import (
	"errors"
	"fmt"
	"slices"

	"hermannm.dev/vizquery/query"
	"hermannm.dev/vizquery/schema"
	"hermannm.dev/wrap"
)

// Value used in place of missing text values in the store. Rows carrying it are filtered out
// for every textual dimension.
const unspecifiedValue = "Unspecified"

const DefaultRowCap = 5000

type Options struct {
	// Applied when the definition has no top-N. Non-positive values fall back to
	// DefaultRowCap.
	RowCap int
}

type Compiler struct {
	catalog *schema.Catalog
	rowCap  int
}

func New(catalog *schema.Catalog, options Options) Compiler {
	rowCap := options.RowCap
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	return Compiler{catalog: catalog, rowCap: rowCap}
}

// CompiledQuery is the SQL text in placeholder form, together with the manifest of data and
// metadata columns it produces.
type CompiledQuery struct {
	SQL          string             `json:"sql"`
	DataColumns  []string           `json:"dataColumns"`
	Metadata     []MetadataColumn   `json:"metadata"`
	Placeholders []PlaceholderToken `json:"placeholders,omitempty"`
	RowCap       int                `json:"rowCap"`
}

func (compiled CompiledQuery) IsMetadataColumn(name string) bool {
	return slices.ContainsFunc(compiled.Metadata, func(column MetadataColumn) bool {
		return column.Name == name
	})
}

// CompileError is returned for definitions that cannot be turned into a query. It is always
// caused by the client input.
type CompileError struct {
	Err error
}

func (err CompileError) Error() string {
	return err.Err.Error()
}

func (err CompileError) Unwrap() error {
	return err.Err
}

func (compiler Compiler) Compile(def query.Definition, table string) (CompiledQuery, error) {
	dimensions := def.Dimensions()
	measures := def.Measures()
	topN, hasTopN := def.TopN()

	if errs := compiler.validate(def, table); len(errs) != 0 {
		return CompiledQuery{}, CompileError{
			Err: wrap.Errors("invalid aggregation definition", errs...),
		}
	}

	stmt := statement{from: table, groupBy: len(dimensions)}
	compiled := CompiledQuery{
		DataColumns: def.Fields(),
		Metadata:    []MetadataColumn{},
	}

	for _, dimension := range dimensions {
		stmt.selectList = append(stmt.selectList, SelectItem{Expression: dimension, IsIdentifier: true})
	}
	for _, measure := range measures {
		stmt.selectList = append(
			stmt.selectList,
			SelectItem{Expression: measure.Expression, Alias: measure.Alias},
		)
	}

	var metadata []metadataItem
	for _, measure := range measures {
		metadata = append(metadata, measureStatistics(dimensions, measure.Expression, measure.Alias)...)
	}
	metadata = append(metadata, exceedsCap(compiler.rowCap))
	if createdField := compiler.catalog.CreatedField(); createdField != "" {
		metadata = append(metadata, createdDateRange(createdField)...)
	}
	for _, field := range compiler.referenceFields(dimensions) {
		metadata = append(metadata, referenceField(field))
	}

	for _, item := range metadata {
		stmt.selectList = append(stmt.selectList, item.selectItem())
		compiled.Metadata = append(compiled.Metadata, item.column)
	}

	stmt.where = And(RawPredicate(def.PreAggregationFilters()), compiler.qualityFilters(dimensions))
	stmt.having = RawPredicate(def.PostAggregationFilters())

	if hasTopN {
		for _, key := range topN.OrderByKeys {
			stmt.orderBy = append(stmt.orderBy, OrderTerm{Expression: key})
		}
		stmt.limit = Limit(topN.N)
		compiled.RowCap = topN.N
	} else {
		stmt.orderBy = compiler.defaultOrder(def)
		stmt.limit = Limit(compiler.rowCap)
		compiled.RowCap = compiler.rowCap
	}

	compiled.SQL = stmt.String()
	compiled.Placeholders = mergePlaceholders(
		FindPlaceholders(def.PreAggregationFilters()),
		FindPlaceholders(def.PostAggregationFilters())...,
	)

	return compiled, nil
}

func (compiler Compiler) validate(def query.Definition, table string) []error {
	var errs []error

	if err := ValidateIdentifier(table); err != nil {
		errs = append(errs, wrap.Error(err, "invalid table name"))
	}

	dimensions := def.Dimensions()
	for _, dimension := range dimensions {
		if _, ok := compiler.catalog.Lookup(dimension); !ok {
			errs = append(errs, fmt.Errorf("dimension '%s' is not in the schema catalog", dimension))
		} else if err := ValidateIdentifier(dimension); err != nil {
			errs = append(errs, wrap.Error(err, "invalid dimension name"))
		}
	}

	aliases := make(map[string]struct{})
	for i, measure := range def.Measures() {
		if measure.Expression == "" {
			errs = append(errs, fmt.Errorf("measure %d has an empty expression", i))
		} else if err := ValidateFragment(measure.Expression); err != nil {
			errs = append(errs, wrap.Errorf(err, "invalid expression for measure %d", i))
		}

		if err := ValidateIdentifier(measure.Alias); err != nil {
			errs = append(errs, wrap.Errorf(err, "invalid alias for measure %d", i))
			continue
		}
		if isReservedName(measure.Alias) {
			errs = append(
				errs,
				fmt.Errorf("measure alias '%s' uses reserved prefix '%s'", measure.Alias, MetadataPrefix),
			)
		}
		if slices.Contains(dimensions, measure.Alias) {
			errs = append(errs, fmt.Errorf("measure alias '%s' collides with a dimension", measure.Alias))
		}
		if _, duplicate := aliases[measure.Alias]; duplicate {
			errs = append(errs, fmt.Errorf("duplicate measure alias '%s'", measure.Alias))
		}
		aliases[measure.Alias] = struct{}{}
	}

	if err := ValidateFragment(def.PreAggregationFilters()); err != nil {
		errs = append(errs, wrap.Error(err, "invalid pre-aggregation filters"))
	}
	if err := ValidateFragment(def.PostAggregationFilters()); err != nil {
		errs = append(errs, wrap.Error(err, "invalid post-aggregation filters"))
	}

	if topN, ok := def.TopN(); ok {
		if topN.N <= 0 {
			errs = append(errs, fmt.Errorf("top-N limit must be positive, got %d", topN.N))
		}
		if len(topN.OrderByKeys) == 0 {
			errs = append(errs, errors.New("top-N query has no order keys"))
		}
		for _, key := range topN.OrderByKeys {
			if key == "" {
				errs = append(errs, errors.New("top-N order key is blank"))
			} else if err := ValidateFragment(key); err != nil {
				errs = append(errs, wrap.Error(err, "invalid top-N order key"))
			}
		}
	}

	return errs
}

func (compiler Compiler) qualityFilters(dimensions []string) Predicate {
	filters := make([]Predicate, 0, len(dimensions))
	for _, dimension := range dimensions {
		if compiler.catalog.IsTextual(dimension) {
			filters = append(filters, NotEqualsText(dimension, unspecifiedValue))
		} else {
			filters = append(filters, IsNotNull(dimension))
		}
	}
	return And(filters...)
}

func (compiler Compiler) defaultOrder(def query.Definition) []OrderTerm {
	dimensions := def.Dimensions()

	if len(dimensions) == 1 {
		if field, ok := compiler.catalog.Lookup(dimensions[0]); ok && field.SortBy != "" {
			var expression QueryBuilder
			expression.WriteString("min(")
			expression.WriteIdentifier(field.SortBy)
			expression.WriteRune(')')
			return []OrderTerm{{Expression: expression.String(), SortOrder: SortOrderAscending}}
		}
	}

	if timeDimensions := def.TimeDimensions(); len(timeDimensions) != 0 {
		return []OrderTerm{
			{Expression: timeDimensions[0], IsIdentifier: true, SortOrder: SortOrderAscending},
		}
	}

	if measures := def.Measures(); len(measures) != 0 {
		return []OrderTerm{
			{Expression: measures[0].Alias, IsIdentifier: true, SortOrder: SortOrderDescending},
		}
	}

	return nil
}

// Coarser geography fields reported alongside geo dimensions, skipping those already grouped
// on.
func (compiler Compiler) referenceFields(dimensions []string) []string {
	var references []string
	for _, dimension := range dimensions {
		field, ok := compiler.catalog.Lookup(dimension)
		if !ok || field.Classification != schema.ClassificationGeo {
			continue
		}

		for _, reference := range field.ReferenceFields {
			if !slices.Contains(dimensions, reference) && !slices.Contains(references, reference) {
				references = append(references, reference)
			}
		}
	}
	return references
}
