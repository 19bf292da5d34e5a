package notes

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/model"
	"github.com/kuitang/noteful/internal/obs"
	"github.com/kuitang/noteful/internal/store"
)

// TagDeleteResult is the combined outcome of a tag delete: the tag removal
// plus the cascade that pulls the tag out of every note. The two writes are
// independent and not atomic, which is why the result reports them together
// instead of pretending one transaction happened.
type TagDeleteResult struct {
	NotesModified int64 `json:"notesModified"`
}

// ListTags returns the owner's tags.
func (s *Service) ListTags(ctx context.Context, ownerID primitive.ObjectID) ([]model.TagView, error) {
	tags, err := s.store.FindTags(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find tags: %w", err)
	}

	views := make([]model.TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, model.ViewTag(tag))
	}
	return views, nil
}

// GetTag reads one of the owner's tags.
func (s *Service) GetTag(ctx context.Context, ownerID, id primitive.ObjectID) (model.TagView, error) {
	tag, err := s.store.FindTagByID(ctx, ownerID, id)
	if err != nil {
		return model.TagView{}, visibility(err)
	}
	return model.ViewTag(tag), nil
}

// CreateTag inserts a tag for the owner. A name the owner already uses is a
// Conflict.
func (s *Service) CreateTag(ctx context.Context, ownerID primitive.ObjectID, name string) (model.TagView, error) {
	tag, err := s.store.CreateTag(ctx, model.Tag{Name: name, OwnerID: ownerID})
	if errors.Is(err, store.ErrDuplicate) {
		return model.TagView{}, errs.New(errs.Conflict, "Tag name already exists")
	}
	if err != nil {
		return model.TagView{}, fmt.Errorf("create tag: %w", err)
	}
	return model.ViewTag(tag), nil
}

// UpdateTag renames one of the owner's tags.
func (s *Service) UpdateTag(ctx context.Context, ownerID, id primitive.ObjectID, name string) (model.TagView, error) {
	tag, err := s.store.UpdateTag(ctx, model.Tag{ID: id, Name: name, OwnerID: ownerID})
	if errors.Is(err, store.ErrDuplicate) {
		return model.TagView{}, errs.New(errs.Conflict, "Tag name already exists")
	}
	if err != nil {
		return model.TagView{}, visibility(err)
	}
	return model.ViewTag(tag), nil
}

// DeleteTag removes one of the owner's tags AND pulls it from every note's
// tag set. The two writes are issued concurrently and neither waits for the
// other; if the process dies between them a dangling reference can survive.
// Best effort, by contract.
func (s *Service) DeleteTag(ctx context.Context, ownerID, id primitive.ObjectID) (TagDeleteResult, error) {
	var modified int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.DeleteTag(gctx, ownerID, id)
	})
	g.Go(func() error {
		n, err := s.store.PullTagFromNotes(gctx, ownerID, id)
		modified = n
		return err
	})

	if err := g.Wait(); err != nil {
		return TagDeleteResult{}, visibility(err)
	}

	if modified > 0 {
		obs.From(ctx).Info("tag cascade", "tag", id.Hex(), "notes_modified", modified)
	}
	return TagDeleteResult{NotesModified: modified}, nil
}
