package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"hermannm.dev/vizquery/compiler"
	"hermannm.dev/vizquery/db"
	"hermannm.dev/vizquery/pipeline"
	"hermannm.dev/vizquery/query"
)

const locationRequiredMessage = "This query requires location services to be enabled. " +
	"Please allow access to your location and try again."

type queryRequest struct {
	Definition query.Spec   `json:"definition"`
	Location   *db.Location `json:"location,omitempty"`
}

type queryResponse struct {
	pipeline.Response
	Message string `json:"message,omitempty"`
}

// Expects:
//   - body: JSON-encoded queryRequest
//
// Returns:
//   - JSON-encoded queryResponse, with status LOCATION_REQUIRED if the definition filters on
//     the caller's location and the request had none
func (api VizQueryAPI) RunQuery(res http.ResponseWriter, req *http.Request) {
	var request queryRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		sendClientError(res, err, "failed to parse query from request body")
		return
	}

	def, err := query.NewDefinition(api.catalog, request.Definition)
	if err != nil {
		sendClientError(res, err, "invalid query definition")
		return
	}

	response, err := api.service.Run(req.Context(), def, request.Location)
	if err != nil {
		var compileErr compiler.CompileError
		if errors.As(err, &compileErr) {
			sendClientError(res, compileErr, "failed to compile query")
		} else {
			sendServerError(res, err, "failed to run query")
		}
		return
	}

	body := queryResponse{Response: response}
	if response.Status == db.StatusLocationRequired {
		body.Message = locationRequiredMessage
	}
	sendJSON(res, body)
}
