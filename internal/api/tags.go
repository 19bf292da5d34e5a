package api

import (
	"net/http"
	"path"

	"github.com/kuitang/noteful/internal/validate"
)

// ListTags handles GET /tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	views, err := h.notes.ListTags(r.Context(), caller.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// GetTag handles GET /tags/{id}.
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.GetTag(r.Context(), caller.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// CreateTag handles POST /tags. Tag names are unique per owner.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req validate.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	name, err := validate.TagName(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.CreateTag(r.Context(), caller.ID, name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", path.Join(r.URL.Path, view.ID))
	writeJSON(w, http.StatusCreated, view)
}

// UpdateTag handles PUT /tags/{id}.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req validate.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, name, err := validate.TagUpdate(r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.UpdateTag(r.Context(), caller.ID, id, name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// DeleteTag handles DELETE /tags/{id}. When the cascade detached the tag
// from any notes the response is 200 with the modification count, otherwise
// 204.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.notes.DeleteTag(r.Context(), caller.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.NotesModified > 0 {
		writeJSON(w, http.StatusOK, result)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
