package api

import (
	"encoding/json"
	"net/http"

	"hermannm.dev/vizquery/log"
	"hermannm.dev/wrap"
)

func sendJSON(res http.ResponseWriter, value any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(res).Encode(value); err != nil {
		log.Error(err, "failed to serialize response")
	}
}

// Client errors are caused by the request, so the full error message is sent back.
func sendClientError(res http.ResponseWriter, err error, message string) {
	if err != nil {
		message = wrap.Error(err, message).Error()
	}

	log.Warn("bad request", "error", message)
	sendErrorJSON(res, message, http.StatusBadRequest)
}

// Server errors are logged, but only the given message is sent back, since engine errors may
// echo filter values from the request.
func sendServerError(res http.ResponseWriter, err error, message string) {
	log.Error(err, message)
	sendErrorJSON(res, message, http.StatusInternalServerError)
}

type errorResponse struct {
	Error string `json:"error"`
}

func sendErrorJSON(res http.ResponseWriter, message string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	_ = json.NewEncoder(res).Encode(errorResponse{Error: message})
}
