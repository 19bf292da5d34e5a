package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kuitang/noteful/internal/model"
)

const connectTimeout = 10 * time.Second

// Mongo is the MongoDB-backed EntityStore.
type Mongo struct {
	client  *mongo.Client
	users   *mongo.Collection
	folders *mongo.Collection
	tags    *mongo.Collection
	notes   *mongo.Collection
}

var _ EntityStore = (*Mongo)(nil)

// ConnectMongo dials the MongoDB instance, verifies the connection and
// returns a store bound to the named database.
func ConnectMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	return &Mongo{
		client:  client,
		users:   db.Collection("users"),
		folders: db.Collection("folders"),
		tags:    db.Collection("tags"),
		notes:   db.Collection("notes"),
	}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the API contract depends on: unique
// username, per-owner unique folder and tag names, and the text indexes that
// back searchTerm reads.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = m.folders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "name", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("create folders indexes: %w", err)
	}

	_, err = m.tags.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create tags index: %w", err)
	}

	_, err = m.notes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
	})
	if err != nil {
		return fmt.Errorf("create notes text index: %w", err)
	}
	return nil
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func scoped(ownerID, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "userId": ownerID}
}

// CreateUser inserts the user. ErrDuplicate means the username is taken.
func (m *Mongo) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	user.ID = primitive.NewObjectID()
	if _, err := m.users.InsertOne(ctx, user); err != nil {
		return model.User{}, mapWriteErr(err)
	}
	return user, nil
}

// FindUserByUsername looks a user up by exact username.
func (m *Mongo) FindUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := m.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// FindUserByID looks a user up by id.
func (m *Mongo) FindUserByID(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	var user model.User
	err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// CreateFolder inserts the folder. ErrDuplicate means the owner already has a
// folder with that name.
func (m *Mongo) CreateFolder(ctx context.Context, folder model.Folder) (model.Folder, error) {
	folder.ID = primitive.NewObjectID()
	if _, err := m.folders.InsertOne(ctx, folder); err != nil {
		return model.Folder{}, mapWriteErr(err)
	}
	return folder, nil
}

// FindFolders lists the owner's folders, optionally text-filtered by name.
func (m *Mongo) FindFolders(ctx context.Context, filter NameFilter) ([]model.Folder, error) {
	query := bson.M{"userId": filter.OwnerID}
	opts := options.Find()
	if filter.SearchTerm != "" {
		query["$text"] = bson.M{"$search": filter.SearchTerm}
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		opts.SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}})
	}

	cursor, err := m.folders.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	folders := []model.Folder{}
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// FindFolderByID reads one folder scoped to the owner.
func (m *Mongo) FindFolderByID(ctx context.Context, ownerID, id primitive.ObjectID) (model.Folder, error) {
	var folder model.Folder
	err := m.folders.FindOne(ctx, scoped(ownerID, id)).Decode(&folder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Folder{}, ErrNotFound
	}
	if err != nil {
		return model.Folder{}, err
	}
	return folder, nil
}

// UpdateFolder renames the folder, scoped to (id, owner).
func (m *Mongo) UpdateFolder(ctx context.Context, folder model.Folder) (model.Folder, error) {
	var updated model.Folder
	err := m.folders.FindOneAndUpdate(ctx,
		scoped(folder.OwnerID, folder.ID),
		bson.M{"$set": bson.M{"name": folder.Name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Folder{}, ErrNotFound
	}
	if err != nil {
		return model.Folder{}, mapWriteErr(err)
	}
	return updated, nil
}

// DeleteFolder removes the folder, scoped to (id, owner).
func (m *Mongo) DeleteFolder(ctx context.Context, ownerID, id primitive.ObjectID) error {
	res, err := m.folders.DeleteOne(ctx, scoped(ownerID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTag inserts the tag. ErrDuplicate means the owner already has a tag
// with that name.
func (m *Mongo) CreateTag(ctx context.Context, tag model.Tag) (model.Tag, error) {
	tag.ID = primitive.NewObjectID()
	if _, err := m.tags.InsertOne(ctx, tag); err != nil {
		return model.Tag{}, mapWriteErr(err)
	}
	return tag, nil
}

// FindTags lists the owner's tags.
func (m *Mongo) FindTags(ctx context.Context, ownerID primitive.ObjectID) ([]model.Tag, error) {
	cursor, err := m.tags.Find(ctx, bson.M{"userId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tags := []model.Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// FindTagByID reads one tag scoped to the owner.
func (m *Mongo) FindTagByID(ctx context.Context, ownerID, id primitive.ObjectID) (model.Tag, error) {
	var tag model.Tag
	err := m.tags.FindOne(ctx, scoped(ownerID, id)).Decode(&tag)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Tag{}, ErrNotFound
	}
	if err != nil {
		return model.Tag{}, err
	}
	return tag, nil
}

// FindTagsByIDs reads the owner's tags whose ids are in the given set. Ids
// that match nothing are simply absent from the result; the caller decides
// whether that is an error.
func (m *Mongo) FindTagsByIDs(ctx context.Context, ownerID primitive.ObjectID, ids []primitive.ObjectID) ([]model.Tag, error) {
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	cursor, err := m.tags.Find(ctx, bson.M{"userId": ownerID, "_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tags := []model.Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// UpdateTag renames the tag, scoped to (id, owner).
func (m *Mongo) UpdateTag(ctx context.Context, tag model.Tag) (model.Tag, error) {
	var updated model.Tag
	err := m.tags.FindOneAndUpdate(ctx,
		scoped(tag.OwnerID, tag.ID),
		bson.M{"$set": bson.M{"name": tag.Name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Tag{}, ErrNotFound
	}
	if err != nil {
		return model.Tag{}, mapWriteErr(err)
	}
	return updated, nil
}

// DeleteTag removes the tag, scoped to (id, owner).
func (m *Mongo) DeleteTag(ctx context.Context, ownerID, id primitive.ObjectID) error {
	res, err := m.tags.DeleteOne(ctx, scoped(ownerID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateNote inserts the note.
func (m *Mongo) CreateNote(ctx context.Context, note model.Note) (model.Note, error) {
	note.ID = primitive.NewObjectID()
	if _, err := m.notes.InsertOne(ctx, note); err != nil {
		return model.Note{}, mapWriteErr(err)
	}
	return note, nil
}

// FindNotes lists notes matching the filter. With a search term the storage
// text index does the matching, results carry a textScore and come back in
// descending-score order; otherwise natural order.
func (m *Mongo) FindNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error) {
	query := bson.M{"userId": filter.OwnerID}
	if filter.FolderID != nil {
		query["folderId"] = *filter.FolderID
	}
	if filter.TagID != nil {
		query["tags"] = *filter.TagID
	}

	opts := options.Find()
	if filter.Scored() {
		query["$text"] = bson.M{"$search": filter.SearchTerm}
		opts.SetProjection(bson.M{
			"title":     1,
			"content":   1,
			"createdAt": 1,
			"folderId":  1,
			"tags":      1,
			"userId":    1,
			"score":     bson.M{"$meta": "textScore"},
		})
		opts.SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}})
	}

	cursor, err := m.notes.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notes := []model.Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// FindNoteByID reads one note scoped to the owner.
func (m *Mongo) FindNoteByID(ctx context.Context, ownerID, id primitive.ObjectID) (model.Note, error) {
	var note model.Note
	err := m.notes.FindOne(ctx, scoped(ownerID, id)).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Note{}, ErrNotFound
	}
	if err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// UpdateNote replaces the mutable fields of the note, scoped to (id, owner).
// A zero FolderID unfiles the note.
func (m *Mongo) UpdateNote(ctx context.Context, note model.Note) (model.Note, error) {
	set := bson.M{
		"title":   note.Title,
		"content": note.Content,
		"tags":    note.Tags,
	}
	update := bson.M{"$set": set}
	if note.FolderID.IsZero() {
		update["$unset"] = bson.M{"folderId": ""}
	} else {
		set["folderId"] = note.FolderID
	}

	var updated model.Note
	err := m.notes.FindOneAndUpdate(ctx,
		scoped(note.OwnerID, note.ID),
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Note{}, ErrNotFound
	}
	if err != nil {
		return model.Note{}, mapWriteErr(err)
	}
	return updated, nil
}

// DeleteNote removes the note, scoped to (id, owner).
func (m *Mongo) DeleteNote(ctx context.Context, ownerID, id primitive.ObjectID) error {
	res, err := m.notes.DeleteOne(ctx, scoped(ownerID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountNotesInFolder counts the owner's notes filed in the folder.
func (m *Mongo) CountNotesInFolder(ctx context.Context, ownerID, folderID primitive.ObjectID) (int64, error) {
	return m.notes.CountDocuments(ctx, bson.M{"userId": ownerID, "folderId": folderID})
}

// PullTagFromNotes pulls the tag id out of every note the owner has.
func (m *Mongo) PullTagFromNotes(ctx context.Context, ownerID, tagID primitive.ObjectID) (int64, error) {
	res, err := m.notes.UpdateMany(ctx,
		bson.M{"userId": ownerID},
		bson.M{"$pull": bson.M{"tags": tagID}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
