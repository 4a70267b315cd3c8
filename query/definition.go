package query

import (
	"encoding/json"
	"fmt"
	"slices"

	"hermannm.dev/enumnames"
	"hermannm.dev/vizquery/schema"
	"hermannm.dev/wrap"
)

type Measure struct {
	Expression string `json:"expression"`
	Alias      string `json:"alias"`
}

type TopN struct {
	OrderByKeys []string `json:"orderByKey"`
	N           int      `json:"topN"`
}

type ResponseType uint8

const (
	ResponseTypeData ResponseType = iota + 1
	ResponseTypeText
)

var responseTypeNames = enumnames.NewMap(map[ResponseType]string{
	ResponseTypeData: "data",
	ResponseTypeText: "text",
})

func (responseType ResponseType) IsValid() bool {
	return responseTypeNames.GetNameOrFallback(responseType, "") != ""
}

func (responseType ResponseType) String() string {
	return responseTypeNames.GetNameOrFallback(responseType, "INVALID_RESPONSE_TYPE")
}

func (responseType ResponseType) MarshalJSON() ([]byte, error) {
	return responseTypeNames.MarshalToNameJSON(responseType)
}

func (responseType *ResponseType) UnmarshalJSON(bytes []byte) error {
	return responseTypeNames.UnmarshalFromNameJSON(bytes, responseType)
}

// Spec is the aggregation definition as received from the upstream producer.
type Spec struct {
	Dimensions             []string     `json:"dimensions"`
	Measures               []Measure    `json:"measures"`
	PreAggregationFilters  string       `json:"preAggregationFilters,omitempty"`
	PostAggregationFilters string       `json:"postAggregationFilters,omitempty"`
	TopN                   *TopN        `json:"topN,omitempty"`
	ResponseType           ResponseType `json:"responseType,omitempty"`
}

// ValidationError is returned when a definition references fields the catalog doesn't know.
type ValidationError struct {
	Problems []error
}

func (err ValidationError) Error() string {
	return wrap.Errors("invalid query definition", err.Problems...).Error()
}

func (err ValidationError) Unwrap() []error {
	return err.Problems
}

// Definition is an immutable aggregation definition. Accessors return copies, and the With*
// methods return new values.
type Definition struct {
	catalog *schema.Catalog

	dimensions             []string
	measures               []Measure
	preAggregationFilters  string
	postAggregationFilters string
	topN                   *TopN
	responseType           ResponseType
	createdDateRange       []string

	timeDimensions        []string
	geoDimensions         []string
	categoricalDimensions []string
}

func NewDefinition(catalog *schema.Catalog, spec Spec) (Definition, error) {
	var problems []error

	seen := make(map[string]struct{}, len(spec.Dimensions))
	for _, dimension := range spec.Dimensions {
		if _, duplicate := seen[dimension]; duplicate {
			problems = append(problems, fmt.Errorf("dimension '%s' listed more than once", dimension))
			continue
		}
		seen[dimension] = struct{}{}

		field, ok := catalog.Lookup(dimension)
		if !ok {
			problems = append(problems, fmt.Errorf("unknown dimension '%s'", dimension))
		} else if field.Role != schema.RoleDimension {
			problems = append(problems, fmt.Errorf("field '%s' is not a dimension", dimension))
		}
	}

	if spec.ResponseType != 0 && !spec.ResponseType.IsValid() {
		problems = append(problems, fmt.Errorf("invalid response type %d", spec.ResponseType))
	}

	if len(problems) != 0 {
		return Definition{}, ValidationError{Problems: problems}
	}

	responseType := spec.ResponseType
	if responseType == 0 {
		responseType = ResponseTypeData
	}

	def := Definition{
		catalog:                catalog,
		measures:               slices.Clone(spec.Measures),
		preAggregationFilters:  spec.PreAggregationFilters,
		postAggregationFilters: spec.PostAggregationFilters,
		topN:                   cloneTopN(spec.TopN),
		responseType:           responseType,
	}
	def.setDimensions(spec.Dimensions)
	return def, nil
}

func (def *Definition) setDimensions(dimensions []string) {
	def.dimensions = slices.Clone(dimensions)
	if def.dimensions == nil {
		def.dimensions = []string{}
	}
	def.timeDimensions, def.geoDimensions, def.categoricalDimensions = def.catalog.Classify(
		def.dimensions,
	)
}

func (def Definition) Catalog() *schema.Catalog {
	return def.catalog
}

func (def Definition) Dimensions() []string {
	return slices.Clone(def.dimensions)
}

func (def Definition) Measures() []Measure {
	return slices.Clone(def.measures)
}

func (def Definition) PreAggregationFilters() string {
	return def.preAggregationFilters
}

func (def Definition) PostAggregationFilters() string {
	return def.postAggregationFilters
}

func (def Definition) TopN() (topN TopN, ok bool) {
	if def.topN == nil {
		return TopN{}, false
	}
	return *cloneTopN(def.topN), true
}

func (def Definition) IsTopN() bool {
	return def.topN != nil
}

func (def Definition) IsTextResponse() bool {
	return def.responseType == ResponseTypeText
}

func (def Definition) TimeDimensions() []string {
	return slices.Clone(def.timeDimensions)
}

func (def Definition) GeoDimensions() []string {
	return slices.Clone(def.geoDimensions)
}

func (def Definition) CategoricalDimensions() []string {
	return slices.Clone(def.categoricalDimensions)
}

func (def Definition) CreatedDateRange() []string {
	return slices.Clone(def.createdDateRange)
}

// Fields are the output columns of the definition: dimensions followed by measure aliases.
func (def Definition) Fields() []string {
	fields := make([]string, 0, len(def.dimensions)+len(def.measures))
	fields = append(fields, def.dimensions...)
	for _, measure := range def.measures {
		fields = append(fields, measure.Alias)
	}
	return fields
}

// WithDimensions returns a copy with the given dimensions, reclassified against the catalog.
func (def Definition) WithDimensions(dimensions []string) Definition {
	def.setDimensions(dimensions)
	return def
}

// WithReorderedDimensions is like WithDimensions, but fails unless the given dimensions are
// a permutation of the current ones.
func (def Definition) WithReorderedDimensions(dimensions []string) (Definition, error) {
	current := slices.Sorted(slices.Values(def.dimensions))
	reordered := slices.Sorted(slices.Values(dimensions))
	if !slices.Equal(current, reordered) {
		return Definition{}, fmt.Errorf(
			"dimensions %v are not a reordering of %v", dimensions, def.dimensions,
		)
	}

	return def.WithDimensions(dimensions), nil
}

func (def Definition) WithCreatedDateRange(from string, to string) Definition {
	def.createdDateRange = []string{from, to}
	return def
}

type definitionJSON struct {
	Dimensions             []string     `json:"dimensions"`
	Measures               []Measure    `json:"measures"`
	PreAggregationFilters  string       `json:"preAggregationFilters,omitempty"`
	PostAggregationFilters string       `json:"postAggregationFilters,omitempty"`
	TopN                   *TopN        `json:"topN,omitempty"`
	ResponseType           ResponseType `json:"responseType"`
	CreatedDateRange       []string     `json:"createdDateRange,omitempty"`
	TimeDimensions         []string     `json:"timeDimension"`
	GeoDimensions          []string     `json:"geoDimension"`
	CategoricalDimensions  []string     `json:"categoricalDimension"`
}

func (def Definition) MarshalJSON() ([]byte, error) {
	measures := def.measures
	if measures == nil {
		measures = []Measure{}
	}

	return json.Marshal(definitionJSON{
		Dimensions:             def.dimensions,
		Measures:               measures,
		PreAggregationFilters:  def.preAggregationFilters,
		PostAggregationFilters: def.postAggregationFilters,
		TopN:                   def.topN,
		ResponseType:           def.responseType,
		CreatedDateRange:       def.createdDateRange,
		TimeDimensions:         def.timeDimensions,
		GeoDimensions:          def.geoDimensions,
		CategoricalDimensions:  def.categoricalDimensions,
	})
}

func cloneTopN(topN *TopN) *TopN {
	if topN == nil {
		return nil
	}
	return &TopN{OrderByKeys: slices.Clone(topN.OrderByKeys), N: topN.N}
}
