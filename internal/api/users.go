package api

import (
	"net/http"
	"path"

	"github.com/kuitang/noteful/internal/model"
	"github.com/kuitang/noteful/internal/validate"
)

// Signup handles POST /users. Validation failures are 422, a taken username
// is 400, success is 201 with a Location header and the user sans password.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req validate.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	creds, err := validate.Signup(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", path.Join(r.URL.Path, user.ID.Hex()))
	writeJSON(w, http.StatusCreated, model.ViewUser(user))
}
