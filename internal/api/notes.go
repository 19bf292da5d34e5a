package api

import (
	"net/http"
	"path"

	"github.com/kuitang/noteful/internal/notes"
	"github.com/kuitang/noteful/internal/validate"
)

// ListNotes handles GET /notes with optional searchTerm, folderId and tagId
// query parameters. A malformed filter id is rejected before the store is
// touched.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	query := notes.NoteQuery{SearchTerm: params.Get("searchTerm")}

	if raw := params.Get("folderId"); raw != "" {
		id, err := validate.ObjectID(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		query.FolderID = &id
	}
	if raw := params.Get("tagId"); raw != "" {
		id, err := validate.ObjectID(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		query.TagID = &id
	}

	views, err := h.notes.ListNotes(r.Context(), caller.ID, query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.GetNote(r.Context(), caller.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// CreateNote handles POST /notes. Referenced folder and tags must exist and
// belong to the caller.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req validate.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	payload, err := validate.NoteCreate(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.CreateNote(r.Context(), caller.ID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", path.Join(r.URL.Path, view.ID))
	writeJSON(w, http.StatusCreated, view)
}

// UpdateNote handles PUT /notes/{id}. The body id must match the path id.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req validate.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, payload, err := validate.NoteUpdate(r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.notes.UpdateNote(r.Context(), caller.ID, id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.notes.DeleteNote(r.Context(), caller.ID, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
