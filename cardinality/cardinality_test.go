package cardinality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/vizquery/cardinality"
	"hermannm.dev/vizquery/db"
	"hermannm.dev/vizquery/query"
	"hermannm.dev/vizquery/schema"
)

func TestAnalyzeEmptyInput(t *testing.T) {
	assert.Empty(t, cardinality.Analyze(nil, []string{"borough"}))
	assert.Empty(t, cardinality.Analyze([]db.Row{{"borough": "QUEENS"}}, nil))
}

func TestAnalyzeSingleDimensionCollapses(t *testing.T) {
	rows := []db.Row{
		{"borough": "QUEENS", "n": int64(1)},
		{"borough": "BRONX", "n": int64(2)},
		{"borough": "QUEENS", "n": int64(3)},
		{"borough": nil, "n": int64(4)},
	}

	stats := cardinality.Analyze(rows, []string{"borough"})

	assert.Equal(
		t,
		cardinality.DimensionStats{
			TotalUnique:    2,
			MinPerGroup:    2,
			MaxPerGroup:    2,
			AvgPerGroup:    2,
			MedianPerGroup: 2,
			StdPerGroup:    0,
		},
		stats["borough"],
	)
}

func TestAnalyzePerGroupCounts(t *testing.T) {
	// Month 01 has 3 statuses, month 02 has 1.
	rows := []db.Row{
		{"month": "2024-01", "status": "Open"},
		{"month": "2024-01", "status": "Closed"},
		{"month": "2024-01", "status": "Pending"},
		{"month": "2024-02", "status": "Open"},
	}

	stats := cardinality.Analyze(rows, []string{"month", "status"})

	status := stats["status"]
	assert.Equal(t, 3, status.TotalUnique)
	assert.Equal(t, 1, status.MinPerGroup)
	assert.Equal(t, 3, status.MaxPerGroup)
	assert.InDelta(t, 2.0, status.AvgPerGroup, 1e-9)
	assert.InDelta(t, 2.0, status.MedianPerGroup, 1e-9)
	assert.InDelta(t, 1.0, status.StdPerGroup, 1e-9)

	// Open appears in both months, the others in only one.
	month := stats["month"]
	assert.Equal(t, 2, month.TotalUnique)
	assert.Equal(t, 1, month.MinPerGroup)
	assert.Equal(t, 2, month.MaxPerGroup)
	assert.InDelta(t, 4.0/3.0, month.AvgPerGroup, 1e-9)
	assert.InDelta(t, 1.0, month.MedianPerGroup, 1e-9)
}

func TestAnalyzeKeepsValueTypesDistinct(t *testing.T) {
	rows := []db.Row{{"zip": "1"}, {"zip": int64(1)}}

	assert.Equal(t, 2, cardinality.Analyze(rows, []string{"zip"})["zip"].TotalUnique)
}

func newDefinition(t *testing.T, dimensions ...string) query.Definition {
	t.Helper()

	def, err := query.NewDefinition(schema.DefaultCatalog(), query.Spec{
		Dimensions: dimensions,
		Measures:   []query.Measure{{Expression: "count(1)", Alias: "num_of_requests"}},
	})
	require.NoError(t, err)
	return def
}

func TestReorderByDescendingCardinality(t *testing.T) {
	def := newDefinition(t, "created_month", "borough", "status")
	stats := cardinality.Stats{
		"created_month": {TotalUnique: 12},
		"borough":       {TotalUnique: 5},
		"status":        {TotalUnique: 40},
	}

	reordered := cardinality.Reorder(def, stats)

	assert.Equal(t, []string{"status", "created_month", "borough"}, reordered.Dimensions())
	assert.Equal(t, []string{"created_month"}, reordered.TimeDimensions())
	assert.Equal(t, []string{"status", "borough"}, reordered.CategoricalDimensions())
}

func TestReorderIsStableAndIdempotent(t *testing.T) {
	def := newDefinition(t, "borough", "status", "created_month")
	stats := cardinality.Stats{
		"borough":       {TotalUnique: 5},
		"status":        {TotalUnique: 5},
		"created_month": {TotalUnique: 7},
	}

	once := cardinality.Reorder(def, stats)
	twice := cardinality.Reorder(once, stats)

	assert.Equal(t, []string{"created_month", "borough", "status"}, once.Dimensions())
	assert.Equal(t, once, twice)
}

func TestReorderMissingStatsCountAsZero(t *testing.T) {
	def := newDefinition(t, "borough", "status")

	reordered := cardinality.Reorder(def, cardinality.Stats{"status": {TotalUnique: 3}})

	assert.Equal(t, []string{"status", "borough"}, reordered.Dimensions())
}

func TestReorderNoOp(t *testing.T) {
	single := newDefinition(t, "borough")
	assert.Equal(t, single, cardinality.Reorder(single, cardinality.Stats{"borough": {TotalUnique: 3}}))

	pair := newDefinition(t, "borough", "status")
	assert.Equal(t, pair, cardinality.Reorder(pair, cardinality.Stats{}))
}
