package schema

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
	"hermannm.dev/wrap"
)

type Field struct {
	Name           string         `json:"name"                     yaml:"name"`
	Role           Role           `json:"role"                     yaml:"role"`
	DataType       DataType       `json:"dataType"                 yaml:"dataType"`
	Classification Classification `json:"classification,omitempty" yaml:"classification"`
	Granularity    GeoGranularity `json:"granularity,omitempty"    yaml:"granularity"`
	// Ordinal companion expression for fields whose labels don't sort naturally (weekday
	// names, day bins). Only used when the field is the single dimension of a query.
	SortBy string `json:"sortBy,omitempty" yaml:"sortBy"`
	// Coarser geography fields to report alongside this field, e.g. the borough of a zip
	// code.
	ReferenceFields []string `json:"referenceFields,omitempty" yaml:"referenceFields"`
}

// Catalog is a read-only field lookup, shared across requests once constructed.
type Catalog struct {
	fields       map[string]Field
	order        []string
	createdField string
}

func NewCatalog(createdField string, fields ...Field) (*Catalog, error) {
	catalog := &Catalog{
		fields:       make(map[string]Field, len(fields)),
		order:        make([]string, 0, len(fields)),
		createdField: createdField,
	}

	var errs []error
	for i, field := range fields {
		if err := field.validate(); err != nil {
			errs = append(errs, fmt.Errorf("field %d ('%s'): %w", i, field.Name, err))
			continue
		}
		if _, exists := catalog.fields[field.Name]; exists {
			errs = append(errs, fmt.Errorf("field '%s' declared more than once", field.Name))
			continue
		}

		field.ReferenceFields = slices.Clone(field.ReferenceFields)
		catalog.fields[field.Name] = field
		catalog.order = append(catalog.order, field.Name)
	}

	for _, name := range catalog.order {
		for _, reference := range catalog.fields[name].ReferenceFields {
			if _, ok := catalog.fields[reference]; !ok {
				errs = append(
					errs,
					fmt.Errorf("field '%s' references unknown field '%s'", name, reference),
				)
			}
		}
	}

	if createdField != "" {
		if field, ok := catalog.fields[createdField]; !ok {
			errs = append(errs, fmt.Errorf("created field '%s' is not in catalog", createdField))
		} else if field.Classification != ClassificationTime {
			errs = append(errs, fmt.Errorf("created field '%s' is not a time field", createdField))
		}
	}

	if len(errs) != 0 {
		return nil, wrap.Errors("invalid schema catalog", errs...)
	}

	return catalog, nil
}

func (field Field) validate() error {
	if field.Name == "" {
		return errors.New("field name is blank")
	}
	if !field.Role.IsValid() {
		return errors.New("invalid field role")
	}
	if !field.DataType.IsValid() {
		return errors.New("invalid field data type")
	}

	if field.Role == RoleMeasure {
		return nil
	}

	if !field.Classification.IsValid() {
		return errors.New("dimension has invalid classification")
	}
	if field.Classification == ClassificationGeo && !field.Granularity.IsValid() {
		return errors.New("geo dimension is missing granularity")
	}
	if field.Classification != ClassificationGeo && field.Granularity != 0 {
		return errors.New("only geo dimensions can have a granularity")
	}

	return nil
}

func (catalog *Catalog) Lookup(name string) (field Field, ok bool) {
	field, ok = catalog.fields[name]
	if ok {
		field.ReferenceFields = slices.Clone(field.ReferenceFields)
	}
	return field, ok
}

func (catalog *Catalog) Fields() []Field {
	fields := make([]Field, 0, len(catalog.order))
	for _, name := range catalog.order {
		field, _ := catalog.Lookup(name)
		fields = append(fields, field)
	}
	return fields
}

// CreatedField is the time-of-creation field used for date range metadata. Blank if the
// catalog has none.
func (catalog *Catalog) CreatedField() string {
	return catalog.createdField
}

// Classify splits dimensions into time, geo and categorical groups, each in dimension
// order. Geo dimensions also appear among the categorical ones. Dimensions missing from
// the catalog are treated as plain categorical.
func (catalog *Catalog) Classify(dimensions []string) (time, geo, categorical []string) {
	time = []string{}
	geo = []string{}
	categorical = []string{}

	for _, dimension := range dimensions {
		field, ok := catalog.fields[dimension]
		switch {
		case ok && field.Classification == ClassificationTime:
			time = append(time, dimension)
		case ok && field.Classification == ClassificationGeo:
			geo = append(geo, dimension)
			categorical = append(categorical, dimension)
		default:
			categorical = append(categorical, dimension)
		}
	}

	return time, geo, categorical
}

func (catalog *Catalog) IsTextual(name string) bool {
	field, ok := catalog.fields[name]
	return ok && field.DataType == DataTypeText
}

func (catalog *Catalog) IsPointGeo(name string) bool {
	field, ok := catalog.fields[name]
	return ok &&
		field.Classification == ClassificationGeo &&
		field.Granularity == GeoGranularityPoint
}

type catalogFile struct {
	CreatedField string  `yaml:"createdField"`
	Fields       []Field `yaml:"fields"`
}

func LoadYAML(reader io.Reader) (*Catalog, error) {
	var file catalogFile

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, wrap.Error(err, "failed to decode schema catalog YAML")
	}

	return NewCatalog(file.CreatedField, file.Fields...)
}
