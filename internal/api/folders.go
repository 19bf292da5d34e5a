package api

import (
	"net/http"
	"path"

	"github.com/kuitang/noteful/internal/validate"
)

// ListFolders handles GET /folders with an optional searchTerm parameter.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	views, err := h.notes.ListFolders(r.Context(), caller.ID, r.URL.Query().Get("searchTerm"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// GetFolder handles GET /folders/{id}.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.GetFolder(r.Context(), caller.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// CreateFolder handles POST /folders. Folder names are unique per owner.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req validate.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	name, err := validate.FolderName(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.CreateFolder(r.Context(), caller.ID, name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", path.Join(r.URL.Path, view.ID))
	writeJSON(w, http.StatusCreated, view)
}

// UpdateFolder handles PUT /folders/{id}. The name is checked before the id,
// and the body id must match the path id.
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req validate.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, name, err := validate.FolderUpdate(r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.UpdateFolder(r.Context(), caller.ID, id, name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// DeleteFolder handles DELETE /folders/{id}. A folder that still holds notes
// cannot be deleted.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.notes.DeleteFolder(r.Context(), caller.ID, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
