package api

import (
	"net/http"

	"github.com/kuitang/noteful/internal/auth"
	"github.com/kuitang/noteful/internal/validate"
)

// tokenResponse carries a freshly issued bearer token.
type tokenResponse struct {
	AuthToken string `json:"authToken"`
}

// Login handles POST /login. Unknown username and wrong password produce the
// same 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req validate.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := validate.Login(req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AuthToken: token})
}

// Refresh handles POST /refresh: a new token for the already-authenticated
// caller, same identity, fresh expiry.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	token, err := h.auth.Refresh(auth.TokenUser{ID: caller.ID.Hex(), Username: caller.Username})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AuthToken: token})
}
