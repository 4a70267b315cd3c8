package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/vizquery/schema"
)

func TestDefaultCatalogClassify(t *testing.T) {
	catalog := schema.DefaultCatalog()

	time, geo, categorical := catalog.Classify(
		[]string{"created_month", "borough", "complaint_type_large", "location"},
	)

	assert.Equal(t, []string{"created_month"}, time)
	assert.Equal(t, []string{"borough", "location"}, geo)
	assert.Equal(t, []string{"borough", "complaint_type_large", "location"}, categorical)
}

func TestClassifyEmpty(t *testing.T) {
	time, geo, categorical := schema.DefaultCatalog().Classify(nil)

	assert.Empty(t, time)
	assert.Empty(t, geo)
	assert.Empty(t, categorical)
	assert.NotNil(t, time)
}

func TestDefaultCatalogFieldProperties(t *testing.T) {
	catalog := schema.DefaultCatalog()

	assert.True(t, catalog.IsTextual("borough"))
	assert.False(t, catalog.IsTextual("created_date"))
	assert.False(t, catalog.IsTextual("unknown_field"))

	assert.True(t, catalog.IsPointGeo("location"))
	assert.False(t, catalog.IsPointGeo("borough"))

	weekday, ok := catalog.Lookup("created_weekday_datepart")
	require.True(t, ok)
	assert.Equal(t, "created_weekday_order", weekday.SortBy)

	assert.Equal(t, "created_date", catalog.CreatedField())
}

func TestLookupReturnsCopy(t *testing.T) {
	catalog := schema.DefaultCatalog()

	field, ok := catalog.Lookup("location")
	require.True(t, ok)
	field.ReferenceFields[0] = "changed"

	again, _ := catalog.Lookup("location")
	assert.Equal(t, "borough", again.ReferenceFields[0])
}

func TestNewCatalogRejectsInvalidFields(t *testing.T) {
	_, err := schema.NewCatalog(
		"missing",
		schema.Field{
			Name:           "borough",
			Role:           schema.RoleDimension,
			DataType:       schema.DataTypeText,
			Classification: schema.ClassificationGeo,
		},
		schema.Field{
			Name:           "status",
			Role:           schema.RoleDimension,
			DataType:       schema.DataTypeText,
			Classification: schema.ClassificationCategorical,
		},
		schema.Field{
			Name:           "status",
			Role:           schema.RoleDimension,
			DataType:       schema.DataTypeText,
			Classification: schema.ClassificationCategorical,
		},
	)
	require.Error(t, err)

	message := err.Error()
	assert.Contains(t, message, "geo dimension is missing granularity")
	assert.Contains(t, message, "declared more than once")
	assert.Contains(t, message, "created field 'missing' is not in catalog")
}

func TestLoadYAML(t *testing.T) {
	catalog, err := schema.LoadYAML(strings.NewReader(`
createdField: created_date
fields:
  - name: created_date
    role: DIMENSION
    dataType: TIMESTAMP
    classification: TIME
  - name: borough
    role: DIMENSION
    dataType: TEXT
    classification: GEO
    granularity: AREAL
  - name: zip
    role: DIMENSION
    dataType: TEXT
    classification: GEO
    granularity: AREAL
    referenceFields: [borough]
  - name: num_of_requests
    role: MEASURE
    dataType: INTEGER
`))
	require.NoError(t, err)

	zip, ok := catalog.Lookup("zip")
	require.True(t, ok)
	assert.Equal(t, schema.GeoGranularityAreal, zip.Granularity)
	assert.Equal(t, []string{"borough"}, zip.ReferenceFields)
	assert.Len(t, catalog.Fields(), 4)
}

func TestLoadYAMLRejectsUnknownEnumName(t *testing.T) {
	_, err := schema.LoadYAML(strings.NewReader(`
fields:
  - name: borough
    role: DIMENSION
    dataType: STRINGY
    classification: GEO
    granularity: AREAL
`))
	assert.Error(t, err)
}
