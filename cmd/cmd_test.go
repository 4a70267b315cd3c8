package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/vizquery/query"
	"hermannm.dev/vizquery/schema"
)

func TestReadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definition.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"dimensions": ["borough"],
		"measures": [{"expression": "count(1)", "alias": "num_of_requests"}],
		"responseType": "data"
	}`), 0o644))

	spec, err := readSpec(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"borough"}, spec.Dimensions)
	assert.Equal(t, []query.Measure{{Expression: "count(1)", Alias: "num_of_requests"}}, spec.Measures)
	assert.Equal(t, query.ResponseTypeData, spec.ResponseType)
}

func TestReadSpecMissingFile(t *testing.T) {
	_, err := readSpec(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read definition file")
}

func TestLoadCatalogDefaultsWhenUnset(t *testing.T) {
	catalog, err := loadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultCatalog().Fields(), catalog.Fields())
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
createdField: created_date
fields:
  - name: created_date
    role: DIMENSION
    dataType: TIMESTAMP
    classification: TIME
`), 0o644))

	catalog, err := loadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "created_date", catalog.CreatedField())
	assert.Len(t, catalog.Fields(), 1)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "run"} {
		found, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, found.Name())
	}
}
