package api

import (
	"net/http"
)

// Returns:
//   - JSON-encoded list of schema.Field, in catalog order
func (api VizQueryAPI) GetSchema(res http.ResponseWriter, req *http.Request) {
	sendJSON(res, api.catalog.Fields())
}
