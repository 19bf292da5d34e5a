package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/model"
)

func newOwner() primitive.ObjectID {
	return primitive.NewObjectID()
}

func TestMemory_FoldersScopedToOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice, bob := newOwner(), newOwner()

	created, err := mem.CreateFolder(ctx, model.Folder{Name: "Drafts", OwnerID: alice})
	require.NoError(t, err)

	// The owner sees it, everyone else gets ErrNotFound.
	_, err = mem.FindFolderByID(ctx, alice, created.ID)
	require.NoError(t, err)

	_, err = mem.FindFolderByID(ctx, bob, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = mem.DeleteFolder(ctx, bob, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	folders, err := mem.FindFolders(ctx, NameFilter{OwnerID: bob})
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestMemory_DuplicateNamesPerOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice, bob := newOwner(), newOwner()

	_, err := mem.CreateFolder(ctx, model.Folder{Name: "Drafts", OwnerID: alice})
	require.NoError(t, err)

	_, err = mem.CreateFolder(ctx, model.Folder{Name: "Drafts", OwnerID: alice})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same name under a different owner is fine.
	_, err = mem.CreateFolder(ctx, model.Folder{Name: "Drafts", OwnerID: bob})
	require.NoError(t, err)
}

func TestMemory_UpdateFolderRejectsRenameCollision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice := newOwner()

	_, err := mem.CreateFolder(ctx, model.Folder{Name: "Drafts", OwnerID: alice})
	require.NoError(t, err)
	other, err := mem.CreateFolder(ctx, model.Folder{Name: "Archive", OwnerID: alice})
	require.NoError(t, err)

	other.Name = "Drafts"
	_, err = mem.UpdateFolder(ctx, other)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemory_DuplicateUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.CreateUser(ctx, model.User{Username: "tim", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = mem.CreateUser(ctx, model.User{Username: "tim", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemory_FindFoldersNameSearchIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice := newOwner()

	for _, name := range []string{"Work Projects", "Personal", "Side projects"} {
		_, err := mem.CreateFolder(ctx, model.Folder{Name: name, OwnerID: alice})
		require.NoError(t, err)
	}

	folders, err := mem.FindFolders(ctx, NameFilter{OwnerID: alice, SearchTerm: "PROJECT"})
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Work Projects", folders[0].Name)
	assert.Equal(t, "Side projects", folders[1].Name)
}

func TestMemory_FindNotesFiltersCompose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice := newOwner()

	folder, err := mem.CreateFolder(ctx, model.Folder{Name: "Drafts", OwnerID: alice})
	require.NoError(t, err)
	tag, err := mem.CreateTag(ctx, model.Tag{Name: "urgent", OwnerID: alice})
	require.NoError(t, err)

	inBoth, err := mem.CreateNote(ctx, model.Note{
		Title: "A", OwnerID: alice, FolderID: folder.ID,
		Tags: []primitive.ObjectID{tag.ID},
	})
	require.NoError(t, err)
	_, err = mem.CreateNote(ctx, model.Note{Title: "B", OwnerID: alice, FolderID: folder.ID})
	require.NoError(t, err)
	_, err = mem.CreateNote(ctx, model.Note{Title: "C", OwnerID: alice, Tags: []primitive.ObjectID{tag.ID}})
	require.NoError(t, err)

	found, err := mem.FindNotes(ctx, NewNoteFilter(alice).WithFolder(folder.ID).WithTag(tag.ID))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, inBoth.ID, found[0].ID)
}

func TestMemory_FindNotesSearchScoresAndSorts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice := newOwner()

	// The short note that is mostly about the term outranks the long one
	// that mentions it once.
	_, err := mem.CreateNote(ctx, model.Note{
		Title:   "Shopping list",
		Content: "milk eggs bread lorem and a very long tail of other words to dilute the match",
		OwnerID: alice,
	})
	require.NoError(t, err)
	dense, err := mem.CreateNote(ctx, model.Note{
		Title:   "Lorem",
		Content: "lorem lorem",
		OwnerID: alice,
	})
	require.NoError(t, err)
	_, err = mem.CreateNote(ctx, model.Note{Title: "Unrelated", Content: "nothing here", OwnerID: alice})
	require.NoError(t, err)

	found, err := mem.FindNotes(ctx, NewNoteFilter(alice).WithSearch("Lorem"))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, dense.ID, found[0].ID)
	for _, note := range found {
		assert.Greater(t, note.Score, 0.0)
	}
}

func TestMemory_PullTagFromNotes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice, bob := newOwner(), newOwner()

	tag, err := mem.CreateTag(ctx, model.Tag{Name: "urgent", OwnerID: alice})
	require.NoError(t, err)
	keep, err := mem.CreateTag(ctx, model.Tag{Name: "later", OwnerID: alice})
	require.NoError(t, err)

	tagged, err := mem.CreateNote(ctx, model.Note{
		Title: "A", OwnerID: alice,
		Tags: []primitive.ObjectID{tag.ID, keep.ID},
	})
	require.NoError(t, err)
	untagged, err := mem.CreateNote(ctx, model.Note{Title: "B", OwnerID: alice})
	require.NoError(t, err)

	// Bob's note referencing the same id must not be touched.
	bobNote, err := mem.CreateNote(ctx, model.Note{
		Title: "C", OwnerID: bob,
		Tags: []primitive.ObjectID{tag.ID},
	})
	require.NoError(t, err)

	modified, err := mem.PullTagFromNotes(ctx, alice, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), modified)

	got, err := mem.FindNoteByID(ctx, alice, tagged.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{keep.ID}, got.Tags)

	got, err = mem.FindNoteByID(ctx, alice, untagged.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	got, err = mem.FindNoteByID(ctx, bob, bobNote.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{tag.ID}, got.Tags)
}

func TestMemory_CountNotesInFolder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()
	alice := newOwner()

	folder, err := mem.CreateFolder(ctx, model.Folder{Name: "Drafts", OwnerID: alice})
	require.NoError(t, err)

	count, err := mem.CountNotesInFolder(ctx, alice, folder.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = mem.CreateNote(ctx, model.Note{Title: "A", OwnerID: alice, FolderID: folder.ID})
	require.NoError(t, err)
	_, err = mem.CreateNote(ctx, model.Note{Title: "B", OwnerID: alice})
	require.NoError(t, err)

	count, err = mem.CountNotesInFolder(ctx, alice, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemory_UpdateNoteMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.UpdateNote(ctx, model.Note{ID: primitive.NewObjectID(), OwnerID: newOwner()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
