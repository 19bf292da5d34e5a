package api

import (
	"encoding/json"
	"net/http"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/obs"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps an application error to its HTTP status and the
// {message, status} payload. Internal errors are logged here with the
// request correlation; the client only ever sees the generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(errs.CodeOf(err))
	if status >= http.StatusInternalServerError {
		obs.From(r.Context()).Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Message: errs.MessageOf(err), Status: status})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.New(errs.InvalidArgument, "Invalid request body")
	}
	return nil
}
