// Package validate holds the pure request validators. Every function is a
// function of its input only, with no store access and no I/O.
//
// Validation is first-failure-wins: each validator is an ordered chain of
// checks and returns on the first violation. The per-entity check order is an
// observable contract (error messages differ per rule), so the order below is
// deliberate and covered by tests: folders check the name before the id,
// tags and notes check the id first. Do not "clean up" the asymmetry.
package validate

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/errs"
)

const (
	// PasswordMinLen and PasswordMaxLen bound signup passwords. 72 is the
	// bcrypt input limit.
	PasswordMinLen = 8
	PasswordMaxLen = 72

	UsernameMinLen = 1
)

// ObjectID checks the storage id format (24 hex characters). Any id arriving
// in a path, body, or foreign-key field goes through here before the store is
// touched.
func ObjectID(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, errs.New(errs.InvalidArgument, fmt.Sprintf("%s is not a valid ID", value))
	}
	return id, nil
}

// IDMatch checks that the id in the URL path and the id in the body are
// textually equal.
func IDMatch(pathID, bodyID string) error {
	if pathID != bodyID {
		return errs.New(errs.InvalidArgument,
			fmt.Sprintf("Params id: %s and Body id: %s must match", pathID, bodyID))
	}
	return nil
}

// SignupRequest is the raw signup payload. Fields are decoded as any so a
// non-string value is a type violation rather than a JSON decode failure.
type SignupRequest struct {
	Fullname any `json:"fullname"`
	Username any `json:"username"`
	Password any `json:"password"`
}

// Credentials is a normalized, validated signup payload.
type Credentials struct {
	Fullname string
	Username string
	Password string
}

// Signup validates a signup payload rule by rule: required fields, then
// string typing, then whitespace, then length. Status 422 on violation.
func Signup(req SignupRequest) (Credentials, error) {
	fields := map[string]any{
		"fullname": req.Fullname,
		"username": req.Username,
		"password": req.Password,
	}

	for _, name := range []string{"username", "password"} {
		if fields[name] == nil {
			return Credentials{}, errs.New(errs.Unprocessable,
				fmt.Sprintf("Missing '%s' in request body", name))
		}
	}

	strs := map[string]string{}
	for _, name := range []string{"fullname", "username", "password"} {
		value := fields[name]
		if value == nil {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return Credentials{}, errs.New(errs.Unprocessable,
				fmt.Sprintf("Field: '%s' must be type String", name))
		}
		strs[name] = s
	}

	for _, name := range []string{"username", "password"} {
		if strs[name] != strings.TrimSpace(strs[name]) {
			return Credentials{}, errs.New(errs.Unprocessable,
				fmt.Sprintf("Field: '%s' cannot start or end with whitespace", name))
		}
	}

	if len(strs["username"]) < UsernameMinLen {
		return Credentials{}, errs.New(errs.Unprocessable,
			fmt.Sprintf("Field: 'username' must be at least %d characters long", UsernameMinLen))
	}
	if len(strs["password"]) < PasswordMinLen {
		return Credentials{}, errs.New(errs.Unprocessable,
			fmt.Sprintf("Field: 'password' must be at least %d characters long", PasswordMinLen))
	}
	if len(strs["password"]) > PasswordMaxLen {
		return Credentials{}, errs.New(errs.Unprocessable,
			fmt.Sprintf("Field: 'password' must be at most %d characters long", PasswordMaxLen))
	}

	return Credentials{
		Fullname: strs["fullname"],
		Username: strs["username"],
		Password: strs["password"],
	}, nil
}

// LoginRequest is the raw login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks that both credentials are present. Whether they are correct is
// the auth service's business.
func Login(req LoginRequest) error {
	if req.Username == "" {
		return errs.New(errs.InvalidArgument, "Missing 'username' in request body")
	}
	if req.Password == "" {
		return errs.New(errs.InvalidArgument, "Missing 'password' in request body")
	}
	return nil
}

// NoteRequest is the raw note create/update payload.
type NoteRequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FolderID string   `json:"folderId"`
	Tags     []string `json:"tags"`
}

// NormalizedNote is a validated note payload with ids parsed. FolderID is the
// zero ObjectID when the note is unfiled.
type NormalizedNote struct {
	Title    string
	Content  string
	FolderID primitive.ObjectID
	Tags     []primitive.ObjectID
}

// NoteCreate validates a note creation payload: required title, then the
// folderId format, then every id in the tags array.
func NoteCreate(req NoteRequest) (NormalizedNote, error) {
	if req.Title == "" {
		return NormalizedNote{}, errs.New(errs.InvalidArgument, "Missing title in request body")
	}

	normalized := NormalizedNote{
		Title:   req.Title,
		Content: req.Content,
		Tags:    make([]primitive.ObjectID, 0, len(req.Tags)),
	}

	if req.FolderID != "" {
		folderID, err := ObjectID(req.FolderID)
		if err != nil {
			return NormalizedNote{}, err
		}
		normalized.FolderID = folderID
	}

	for _, tag := range req.Tags {
		tagID, err := primitive.ObjectIDFromHex(tag)
		if err != nil {
			return NormalizedNote{}, errs.New(errs.InvalidArgument, "The tags array contains an invalid id")
		}
		normalized.Tags = append(normalized.Tags, tagID)
	}

	return normalized, nil
}

// NoteUpdate validates a note update: path id format, path/body id match,
// then the same payload rules as create.
func NoteUpdate(pathID string, req NoteRequest) (primitive.ObjectID, NormalizedNote, error) {
	id, err := ObjectID(pathID)
	if err != nil {
		return primitive.NilObjectID, NormalizedNote{}, err
	}
	if err := IDMatch(pathID, req.ID); err != nil {
		return primitive.NilObjectID, NormalizedNote{}, err
	}
	normalized, err := NoteCreate(req)
	if err != nil {
		return primitive.NilObjectID, NormalizedNote{}, err
	}
	return id, normalized, nil
}

// NameRequest is the raw folder/tag payload.
type NameRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderName validates a folder creation payload.
func FolderName(req NameRequest) (string, error) {
	if req.Name == "" {
		return "", errs.New(errs.InvalidArgument, "Name Field is missing")
	}
	return req.Name, nil
}

// FolderUpdate validates a folder rename. Folders check the name before the
// id, the reverse of tags and notes.
func FolderUpdate(pathID string, req NameRequest) (primitive.ObjectID, string, error) {
	name, err := FolderName(req)
	if err != nil {
		return primitive.NilObjectID, "", err
	}
	id, err := ObjectID(pathID)
	if err != nil {
		return primitive.NilObjectID, "", err
	}
	if err := IDMatch(pathID, req.ID); err != nil {
		return primitive.NilObjectID, "", err
	}
	return id, name, nil
}

// TagName validates a tag creation payload.
func TagName(req NameRequest) (string, error) {
	if req.Name == "" {
		return "", errs.New(errs.InvalidArgument, "Missing name in request body")
	}
	return req.Name, nil
}

// TagUpdate validates a tag rename: id format, id match, then name presence.
func TagUpdate(pathID string, req NameRequest) (primitive.ObjectID, string, error) {
	id, err := ObjectID(pathID)
	if err != nil {
		return primitive.NilObjectID, "", err
	}
	if err := IDMatch(pathID, req.ID); err != nil {
		return primitive.NilObjectID, "", err
	}
	name, err := TagName(req)
	if err != nil {
		return primitive.NilObjectID, "", err
	}
	return id, name, nil
}
