// Package api exposes the HTTP surface: routing, request decoding, and
// response encoding. Handlers validate, extract the caller, and delegate to
// the services; every error flows through writeError so the wire contract
// stays in one place.
package api

import (
	"net/http"

	"github.com/kuitang/noteful/internal/auth"
	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/notes"
	"github.com/kuitang/noteful/internal/obs"
)

// Handler wires the auth and notes services to HTTP.
type Handler struct {
	auth  *auth.Service
	notes *notes.Service
}

// Middleware wraps a handler, e.g. for rate limiting.
type Middleware func(http.Handler) http.Handler

// NewHandler creates the API handler.
func NewHandler(authService *auth.Service, notesService *notes.Service) *Handler {
	return &Handler{auth: authService, notes: notesService}
}

// Routes builds the full router. Every route except signup and login sits
// behind the auth middleware; extra middlewares (rate limiting) run after
// auth so they can see the caller.
func (h *Handler) Routes(authMW *auth.Middleware, extra ...Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", h.Signup)
	mux.HandleFunc("POST /login", h.Login)

	protected := func(pattern string, fn http.HandlerFunc) {
		var handler http.Handler = fn
		for i := len(extra) - 1; i >= 0; i-- {
			handler = extra[i](handler)
		}
		mux.Handle(pattern, authMW.RequireAuth(handler))
	}

	protected("POST /refresh", h.Refresh)

	protected("GET /notes", h.ListNotes)
	protected("GET /notes/{id}", h.GetNote)
	protected("POST /notes", h.CreateNote)
	protected("PUT /notes/{id}", h.UpdateNote)
	protected("DELETE /notes/{id}", h.DeleteNote)

	protected("GET /folders", h.ListFolders)
	protected("GET /folders/{id}", h.GetFolder)
	protected("POST /folders", h.CreateFolder)
	protected("PUT /folders/{id}", h.UpdateFolder)
	protected("DELETE /folders/{id}", h.DeleteFolder)

	protected("GET /tags", h.ListTags)
	protected("GET /tags/{id}", h.GetTag)
	protected("POST /tags", h.CreateTag)
	protected("PUT /tags/{id}", h.UpdateTag)
	protected("DELETE /tags/{id}", h.DeleteTag)

	var handler http.Handler = mux
	handler = obs.AccessLogMiddleware(handler)
	handler = obs.RequestContextMiddleware(handler)
	return handler
}

// requireCaller reads the authenticated caller placed in the context by the
// auth middleware. Missing caller on a protected route is a wiring bug, but
// it still answers 401 rather than panicking.
func requireCaller(w http.ResponseWriter, r *http.Request) (auth.Caller, bool) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, r, errs.New(errs.Unauthorized, "Unauthorized"))
		return auth.Caller{}, false
	}
	return caller, true
}
