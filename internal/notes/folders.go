package notes

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/model"
	"github.com/kuitang/noteful/internal/store"
)

// ListFolders returns the owner's folders, optionally filtered by a name
// search term.
func (s *Service) ListFolders(ctx context.Context, ownerID primitive.ObjectID, searchTerm string) ([]model.FolderView, error) {
	filter := store.NewNameFilter(ownerID)
	if searchTerm != "" {
		filter = filter.WithSearch(searchTerm)
	}
	folders, err := s.store.FindFolders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find folders: %w", err)
	}

	views := make([]model.FolderView, 0, len(folders))
	for _, folder := range folders {
		views = append(views, model.ViewFolder(folder))
	}
	return views, nil
}

// GetFolder reads one of the owner's folders.
func (s *Service) GetFolder(ctx context.Context, ownerID, id primitive.ObjectID) (model.FolderView, error) {
	folder, err := s.store.FindFolderByID(ctx, ownerID, id)
	if err != nil {
		return model.FolderView{}, visibility(err)
	}
	return model.ViewFolder(folder), nil
}

// CreateFolder inserts a folder for the owner. A name the owner already uses
// is a Conflict.
func (s *Service) CreateFolder(ctx context.Context, ownerID primitive.ObjectID, name string) (model.FolderView, error) {
	folder, err := s.store.CreateFolder(ctx, model.Folder{Name: name, OwnerID: ownerID})
	if errors.Is(err, store.ErrDuplicate) {
		return model.FolderView{}, errs.New(errs.Conflict, "Folder name already exists")
	}
	if err != nil {
		return model.FolderView{}, fmt.Errorf("create folder: %w", err)
	}
	return model.ViewFolder(folder), nil
}

// UpdateFolder renames one of the owner's folders.
func (s *Service) UpdateFolder(ctx context.Context, ownerID, id primitive.ObjectID, name string) (model.FolderView, error) {
	folder, err := s.store.UpdateFolder(ctx, model.Folder{ID: id, Name: name, OwnerID: ownerID})
	if errors.Is(err, store.ErrDuplicate) {
		return model.FolderView{}, errs.New(errs.Conflict, "Folder name already exists")
	}
	if err != nil {
		return model.FolderView{}, visibility(err)
	}
	return model.ViewFolder(folder), nil
}

// DeleteFolder removes one of the owner's folders, refusing while any of the
// owner's notes is still filed in it. The count and the delete are separate
// reads, so a note filed concurrently can slip past the guard; that window
// is accepted.
func (s *Service) DeleteFolder(ctx context.Context, ownerID, id primitive.ObjectID) error {
	inUse, err := s.store.CountNotesInFolder(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("count notes in folder: %w", err)
	}
	if inUse > 0 {
		return errs.New(errs.Conflict, "Folder currently in use")
	}
	return visibility(s.store.DeleteFolder(ctx, ownerID, id))
}
