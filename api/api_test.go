package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/vizquery/api"
	"hermannm.dev/vizquery/chart"
	"hermannm.dev/vizquery/compiler"
	"hermannm.dev/vizquery/config"
	"hermannm.dev/vizquery/db"
	"hermannm.dev/vizquery/pipeline"
	"hermannm.dev/vizquery/schema"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	store, err := db.Open(ctx, config.DuckDB{Table: "requests_311"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Exec(ctx, `
		CREATE TABLE requests_311 AS SELECT * FROM (VALUES
			(TIMESTAMP '2024-01-05 10:00:00', 'MANHATTAN', 'Open', 40.75, -73.99),
			(TIMESTAMP '2024-02-01 09:00:00', 'BROOKLYN', 'Open', 40.69, -73.99),
			(TIMESTAMP '2024-03-10 08:00:00', 'BROOKLYN', 'Closed', 40.74, -73.94)
		) AS requests(created_date, borough, status, latitude, longitude)
	`))

	catalog := schema.DefaultCatalog()
	service := pipeline.NewService(
		compiler.New(catalog, compiler.Options{RowCap: 100}),
		db.NewExecutor(store, db.ExecutorOptions{Timeout: 10 * time.Second, MaxQueries: 2}),
		chart.NewClassifier(chart.Options{AdditiveMeasures: []string{"num_of_requests"}}),
		"requests_311",
	)

	vizQueryAPI := api.NewVizQueryAPI(
		service,
		catalog,
		config.API{AllowedOrigins: []string{"http://localhost:5500"}},
	)

	server := httptest.NewServer(vizQueryAPI.Handler())
	t.Cleanup(server.Close)
	return server
}

func postQuery(t *testing.T, server *httptest.Server, body string) (int, map[string]any) {
	t.Helper()

	res, err := http.Post(server.URL+"/query", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	return res.StatusCode, decoded
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	res, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestGetSchema(t *testing.T) {
	server := newTestServer(t)

	res, err := http.Get(server.URL + "/schema")
	require.NoError(t, err)
	defer res.Body.Close()

	var fields []schema.Field
	require.NoError(t, json.NewDecoder(res.Body).Decode(&fields))
	assert.Equal(t, schema.DefaultCatalog().Fields(), fields)
}

func TestRunQuery(t *testing.T) {
	server := newTestServer(t)

	status, body := postQuery(t, server, `{
		"definition": {
			"dimensions": ["borough"],
			"measures": [{"expression": "count(1)", "alias": "num_of_requests"}]
		}
	}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SUCCESS", body["status"])
	assert.Len(t, body["dataset"], 2)
	assert.Equal(t, "choropleth_map", body["chartType"])
	assert.NotContains(t, body, "message")
}

func TestRunQueryRequiresLocation(t *testing.T) {
	server := newTestServer(t)

	status, body := postQuery(t, server, `{
		"definition": {
			"measures": [{"expression": "count(1)", "alias": "num_of_requests"}],
			"preAggregationFilters": "abs(latitude - {user_latitude}) < 0.1"
		}
	}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LOCATION_REQUIRED", body["status"])
	assert.Contains(t, body["message"], "location")
	assert.Equal(t, "text", body["chartType"])
}

func TestRunQueryWithLocation(t *testing.T) {
	server := newTestServer(t)

	status, body := postQuery(t, server, `{
		"definition": {
			"measures": [{"expression": "count(1)", "alias": "num_of_requests"}],
			"preAggregationFilters": "abs(latitude - {user_latitude}) < 0.02"
		},
		"location": {"latitude": 40.74, "longitude": -73.95}
	}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SUCCESS", body["status"])
	require.Len(t, body["dataset"], 1)
	row := body["dataset"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 2, row["num_of_requests"])
}

func TestRunQueryUnknownDimension(t *testing.T) {
	server := newTestServer(t)

	status, body := postQuery(t, server, `{"definition": {"dimensions": ["no_such_field"]}}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "no_such_field")
}

func TestRunQueryCompileError(t *testing.T) {
	server := newTestServer(t)

	status, body := postQuery(t, server, `{
		"definition": {"measures": [{"expression": "count(1)", "alias": "1bad"}]}
	}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "failed to compile query")
}

func TestRunQueryExecutionErrorHidesDetails(t *testing.T) {
	server := newTestServer(t)

	status, body := postQuery(t, server, `{
		"definition": {"measures": [{"expression": "sum(secret_column)", "alias": "n"}]}
	}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "failed to run query", body["error"])
}

func TestRunQueryMalformedBody(t *testing.T) {
	server := newTestServer(t)

	status, _ := postQuery(t, server, `{"definition":`)

	assert.Equal(t, http.StatusBadRequest, status)
}
