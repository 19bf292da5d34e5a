// Package notes implements the domain operations behind the notes, folders
// and tags endpoints: ownership-scoped CRUD, referential checks between the
// three entities, and list-query composition. All three live in one package
// because they share the same patterns and constantly reference each other:
// a note points at a folder and a set of tags, all owned by the same user.
package notes

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/model"
	"github.com/kuitang/noteful/internal/store"
)

// Service exposes the note/folder/tag operations on top of the entity store.
type Service struct {
	store store.EntityStore
}

// NewService creates the domain service.
func NewService(entityStore store.EntityStore) *Service {
	return &Service{store: entityStore}
}

// visibility translates a store miss into the uniform "Not Found" the API
// reports for both absent and not-owned documents. Every read, update and
// delete path funnels its store error through here so no entity can drift
// into leaking ownership.
func visibility(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errs.NotFoundErr()
	}
	return err
}

// tagsByID loads the owner's tags for a set of ids and indexes them, for
// expanding note projections.
func (s *Service) tagsByID(ctx context.Context, ownerID primitive.ObjectID, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Tag, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]model.Tag{}, nil
	}
	tags, err := s.store.FindTagsByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}
	indexed := make(map[primitive.ObjectID]model.Tag, len(tags))
	for _, tag := range tags {
		indexed[tag.ID] = tag
	}
	return indexed, nil
}
