// Package store is the persistence boundary for users, folders, tags and
// notes. The production implementation is MongoDB; an in-memory
// implementation with the same semantics backs the tests.
//
// Every folder/tag/note operation is owner-scoped: the owner id is part of
// the lookup key, so a caller can never observe (or mutate) another user's
// documents. A miss for either reason is the same ErrNotFound.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/model"
)

// Sentinel errors. Callers map these to API error codes at the service
// boundary.
var (
	// ErrNotFound means the document is absent or owned by someone else;
	// the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate key")
)

// EntityStore provides atomic single-document operations. There are no
// multi-document transactions: cross-entity invariants are enforced by the
// services with separate reads and writes.
type EntityStore interface {
	// Users.
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	FindUserByUsername(ctx context.Context, username string) (model.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (model.User, error)

	// Folders.
	CreateFolder(ctx context.Context, folder model.Folder) (model.Folder, error)
	FindFolders(ctx context.Context, filter NameFilter) ([]model.Folder, error)
	FindFolderByID(ctx context.Context, ownerID, id primitive.ObjectID) (model.Folder, error)
	UpdateFolder(ctx context.Context, folder model.Folder) (model.Folder, error)
	DeleteFolder(ctx context.Context, ownerID, id primitive.ObjectID) error

	// Tags.
	CreateTag(ctx context.Context, tag model.Tag) (model.Tag, error)
	FindTags(ctx context.Context, ownerID primitive.ObjectID) ([]model.Tag, error)
	FindTagByID(ctx context.Context, ownerID, id primitive.ObjectID) (model.Tag, error)
	FindTagsByIDs(ctx context.Context, ownerID primitive.ObjectID, ids []primitive.ObjectID) ([]model.Tag, error)
	UpdateTag(ctx context.Context, tag model.Tag) (model.Tag, error)
	DeleteTag(ctx context.Context, ownerID, id primitive.ObjectID) error

	// Notes.
	CreateNote(ctx context.Context, note model.Note) (model.Note, error)
	FindNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error)
	FindNoteByID(ctx context.Context, ownerID, id primitive.ObjectID) (model.Note, error)
	UpdateNote(ctx context.Context, note model.Note) (model.Note, error)
	DeleteNote(ctx context.Context, ownerID, id primitive.ObjectID) error

	// CountNotesInFolder reports how many of the owner's notes reference the
	// folder; the folder-delete guard reads it before removing anything.
	CountNotesInFolder(ctx context.Context, ownerID, folderID primitive.ObjectID) (int64, error)

	// PullTagFromNotes removes the tag id from the tag set of every note the
	// owner has and reports how many notes were modified.
	PullTagFromNotes(ctx context.Context, ownerID, tagID primitive.ObjectID) (int64, error)
}
