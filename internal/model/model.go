// Package model declares the stored documents and the response projections
// for the noteful API. Stored documents use primitive.ObjectID and bson tags;
// projections are what handlers serialize, with foreign ids expanded where
// the API contract says so.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a stored user document. PasswordHash never leaves the store layer.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Fullname     string             `bson:"fullname,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password"`
}

// Folder is a stored folder document. (name, userId) is unique per owner.
type Folder struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	OwnerID primitive.ObjectID `bson:"userId"`
}

// Tag is a stored tag document. (name, userId) is unique per owner.
type Tag struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	OwnerID primitive.ObjectID `bson:"userId"`
}

// Note is a stored note document. FolderID is the zero ObjectID when the note
// is not filed in a folder. Tags holds tag ids; they are expanded to full Tag
// objects only at projection time.
type Note struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Title     string               `bson:"title"`
	Content   string               `bson:"content"`
	CreatedAt time.Time            `bson:"createdAt"`
	FolderID  primitive.ObjectID   `bson:"folderId,omitempty"`
	Tags      []primitive.ObjectID `bson:"tags,omitempty"`
	OwnerID   primitive.ObjectID   `bson:"userId"`
	// Score is populated only by text-search reads ($meta: textScore).
	Score float64 `bson:"score,omitempty"`
}

// UserView is the signup/response shape. No password field exists on it.
type UserView struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname,omitempty"`
	Username string `json:"username"`
}

// FolderView is the folder response shape.
type FolderView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagView is the tag response shape.
type TagView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NoteView is the note response shape: tags dereferenced to full objects,
// folderId null when the note is unfiled, score present only on search reads.
type NoteView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	FolderID  *string   `json:"folderId"`
	Tags      []TagView `json:"tags"`
	Score     *float64  `json:"score,omitempty"`
}

// ViewUser projects a stored user for API responses.
func ViewUser(u User) UserView {
	return UserView{
		ID:       u.ID.Hex(),
		Fullname: u.Fullname,
		Username: u.Username,
	}
}

// ViewFolder projects a stored folder for API responses.
func ViewFolder(f Folder) FolderView {
	return FolderView{ID: f.ID.Hex(), Name: f.Name}
}

// ViewTag projects a stored tag for API responses.
func ViewTag(t Tag) TagView {
	return TagView{ID: t.ID.Hex(), Name: t.Name}
}

// ViewNote projects a stored note. tagsByID supplies the dereferenced tags;
// ids with no entry are skipped rather than rendered as dangling references.
// withScore controls whether the text-search relevance score is serialized.
func ViewNote(n Note, tagsByID map[primitive.ObjectID]Tag, withScore bool) NoteView {
	view := NoteView{
		ID:        n.ID.Hex(),
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		Tags:      make([]TagView, 0, len(n.Tags)),
	}
	if !n.FolderID.IsZero() {
		hex := n.FolderID.Hex()
		view.FolderID = &hex
	}
	for _, id := range n.Tags {
		tag, ok := tagsByID[id]
		if !ok {
			continue
		}
		view.Tags = append(view.Tags, ViewTag(tag))
	}
	if withScore {
		score := n.Score
		view.Score = &score
	}
	return view
}
