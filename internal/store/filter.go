package store

import "go.mongodb.org/mongo-driver/bson/primitive"

// NoteFilter is the effective read filter for listing notes. The owner
// constraint is always present; the optional fields narrow the result. The
// shape is a closed value type so every combination the API can produce is
// statically known and testable.
type NoteFilter struct {
	OwnerID    primitive.ObjectID
	FolderID   *primitive.ObjectID
	TagID      *primitive.ObjectID
	SearchTerm string
}

// NewNoteFilter returns the base owner-scoped filter.
func NewNoteFilter(ownerID primitive.ObjectID) NoteFilter {
	return NoteFilter{OwnerID: ownerID}
}

// WithFolder narrows the filter to notes filed in the given folder.
func (f NoteFilter) WithFolder(folderID primitive.ObjectID) NoteFilter {
	f.FolderID = &folderID
	return f
}

// WithTag narrows the filter to notes whose tag set contains the given tag.
func (f NoteFilter) WithTag(tagID primitive.ObjectID) NoteFilter {
	f.TagID = &tagID
	return f
}

// WithSearch adds a full-text search term. A non-empty term also switches the
// read to score projection and descending-score ordering.
func (f NoteFilter) WithSearch(term string) NoteFilter {
	f.SearchTerm = term
	return f
}

// Scored reports whether results carry a relevance score.
func (f NoteFilter) Scored() bool {
	return f.SearchTerm != ""
}

// NameFilter is the effective read filter for listing folders: owner-scoped,
// with an optional text search over the name.
type NameFilter struct {
	OwnerID    primitive.ObjectID
	SearchTerm string
}

// NewNameFilter returns the base owner-scoped filter.
func NewNameFilter(ownerID primitive.ObjectID) NameFilter {
	return NameFilter{OwnerID: ownerID}
}

// WithSearch adds a text search term over the name field.
func (f NameFilter) WithSearch(term string) NameFilter {
	f.SearchTerm = term
	return f
}
