package notes

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/model"
	"github.com/kuitang/noteful/internal/store"
	"github.com/kuitang/noteful/internal/validate"
)

// NoteQuery carries the parsed optional list parameters. Nil pointer means
// the parameter was absent.
type NoteQuery struct {
	SearchTerm string
	FolderID   *primitive.ObjectID
	TagID      *primitive.ObjectID
}

// ComposeNoteFilter builds the effective read filter from the query. Pure;
// the owner constraint is always present.
func ComposeNoteFilter(ownerID primitive.ObjectID, query NoteQuery) store.NoteFilter {
	filter := store.NewNoteFilter(ownerID)
	if query.FolderID != nil {
		filter = filter.WithFolder(*query.FolderID)
	}
	if query.TagID != nil {
		filter = filter.WithTag(*query.TagID)
	}
	if query.SearchTerm != "" {
		filter = filter.WithSearch(query.SearchTerm)
	}
	return filter
}

// ListNotes returns the owner's notes matching the query, projected with
// expanded tags. With a search term the results carry a relevance score and
// come back in descending-score order.
func (s *Service) ListNotes(ctx context.Context, ownerID primitive.ObjectID, query NoteQuery) ([]model.NoteView, error) {
	filter := ComposeNoteFilter(ownerID, query)
	found, err := s.store.FindNotes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	// One tag read covers the whole page.
	var allTagIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, note := range found {
		for _, id := range note.Tags {
			if !seen[id] {
				seen[id] = true
				allTagIDs = append(allTagIDs, id)
			}
		}
	}
	tags, err := s.tagsByID(ctx, ownerID, allTagIDs)
	if err != nil {
		return nil, fmt.Errorf("expand tags: %w", err)
	}

	views := make([]model.NoteView, 0, len(found))
	for _, note := range found {
		views = append(views, model.ViewNote(note, tags, filter.Scored()))
	}
	return views, nil
}

// GetNote reads one of the owner's notes, projected with expanded tags.
func (s *Service) GetNote(ctx context.Context, ownerID, id primitive.ObjectID) (model.NoteView, error) {
	note, err := s.store.FindNoteByID(ctx, ownerID, id)
	if err != nil {
		return model.NoteView{}, visibility(err)
	}
	return s.viewNote(ctx, note)
}

// CreateNote checks the folder/tag references, inserts the note with the
// caller as owner, and returns the projection of what was stored.
func (s *Service) CreateNote(ctx context.Context, ownerID primitive.ObjectID, payload validate.NormalizedNote) (model.NoteView, error) {
	if err := s.checkReferences(ctx, ownerID, payload.FolderID, payload.Tags); err != nil {
		return model.NoteView{}, err
	}

	note, err := s.store.CreateNote(ctx, model.Note{
		Title:     payload.Title,
		Content:   payload.Content,
		CreatedAt: time.Now().UTC(),
		FolderID:  payload.FolderID,
		Tags:      payload.Tags,
		OwnerID:   ownerID,
	})
	if err != nil {
		return model.NoteView{}, fmt.Errorf("create note: %w", err)
	}

	// Re-read so the response reflects the stored document, not the request.
	stored, err := s.store.FindNoteByID(ctx, ownerID, note.ID)
	if err != nil {
		return model.NoteView{}, visibility(err)
	}
	return s.viewNote(ctx, stored)
}

// UpdateNote checks the new folder/tag references, replaces the note's
// mutable fields scoped to the owner, and returns the fresh projection.
func (s *Service) UpdateNote(ctx context.Context, ownerID, id primitive.ObjectID, payload validate.NormalizedNote) (model.NoteView, error) {
	if err := s.checkReferences(ctx, ownerID, payload.FolderID, payload.Tags); err != nil {
		return model.NoteView{}, err
	}

	updated, err := s.store.UpdateNote(ctx, model.Note{
		ID:       id,
		Title:    payload.Title,
		Content:  payload.Content,
		FolderID: payload.FolderID,
		Tags:     payload.Tags,
		OwnerID:  ownerID,
	})
	if err != nil {
		return model.NoteView{}, visibility(err)
	}
	return s.viewNote(ctx, updated)
}

// DeleteNote removes one of the owner's notes.
func (s *Service) DeleteNote(ctx context.Context, ownerID, id primitive.ObjectID) error {
	return visibility(s.store.DeleteNote(ctx, ownerID, id))
}

func (s *Service) viewNote(ctx context.Context, note model.Note) (model.NoteView, error) {
	tags, err := s.tagsByID(ctx, note.OwnerID, note.Tags)
	if err != nil {
		return model.NoteView{}, fmt.Errorf("expand tags: %w", err)
	}
	return model.ViewNote(note, tags, false), nil
}
