package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNoteFilter_Composition(t *testing.T) {
	t.Parallel()
	owner := primitive.NewObjectID()
	folder := primitive.NewObjectID()
	tag := primitive.NewObjectID()

	base := NewNoteFilter(owner)
	assert.False(t, base.Scored())

	full := base.WithFolder(folder).WithTag(tag).WithSearch("lorem")
	assert.True(t, full.Scored())
	assert.Equal(t, folder, *full.FolderID)
	assert.Equal(t, tag, *full.TagID)

	// With* returns a new value; the base filter stays untouched.
	assert.Nil(t, base.FolderID)
	assert.Nil(t, base.TagID)
	assert.Empty(t, base.SearchTerm)
}
