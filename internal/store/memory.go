package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/model"
)

// Memory is an in-memory EntityStore with the same observable semantics as
// the Mongo implementation: owner scoping, unique-name rejection, text-ish
// search with a relevance score. Tests run against it so they need no
// running database. It is not a test double with canned answers; every
// operation really mutates shared state under a lock.
type Memory struct {
	mu sync.RWMutex

	users   map[primitive.ObjectID]model.User
	folders map[primitive.ObjectID]model.Folder
	tags    map[primitive.ObjectID]model.Tag
	notes   map[primitive.ObjectID]model.Note

	// Insertion order stands in for Mongo's natural order.
	folderOrder []primitive.ObjectID
	tagOrder    []primitive.ObjectID
	noteOrder   []primitive.ObjectID
}

var _ EntityStore = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[primitive.ObjectID]model.User),
		folders: make(map[primitive.ObjectID]model.Folder),
		tags:    make(map[primitive.ObjectID]model.Tag),
		notes:   make(map[primitive.ObjectID]model.Note),
	}
}

func (m *Memory) CreateUser(_ context.Context, user model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return model.User{}, ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) FindUserByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Memory) FindUserByID(_ context.Context, id primitive.ObjectID) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) CreateFolder(_ context.Context, folder model.Folder) (model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.folders {
		if existing.OwnerID == folder.OwnerID && existing.Name == folder.Name {
			return model.Folder{}, ErrDuplicate
		}
	}
	folder.ID = primitive.NewObjectID()
	m.folders[folder.ID] = folder
	m.folderOrder = append(m.folderOrder, folder.ID)
	return folder, nil
}

func (m *Memory) FindFolders(_ context.Context, filter NameFilter) ([]model.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []model.Folder{}
	for _, id := range m.folderOrder {
		folder, ok := m.folders[id]
		if !ok || folder.OwnerID != filter.OwnerID {
			continue
		}
		if filter.SearchTerm != "" && !containsFold(folder.Name, filter.SearchTerm) {
			continue
		}
		result = append(result, folder)
	}
	return result, nil
}

func (m *Memory) FindFolderByID(_ context.Context, ownerID, id primitive.ObjectID) (model.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	folder, ok := m.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return model.Folder{}, ErrNotFound
	}
	return folder, nil
}

func (m *Memory) UpdateFolder(_ context.Context, folder model.Folder) (model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.folders[folder.ID]
	if !ok || existing.OwnerID != folder.OwnerID {
		return model.Folder{}, ErrNotFound
	}
	for id, other := range m.folders {
		if id != folder.ID && other.OwnerID == folder.OwnerID && other.Name == folder.Name {
			return model.Folder{}, ErrDuplicate
		}
	}
	existing.Name = folder.Name
	m.folders[folder.ID] = existing
	return existing, nil
}

func (m *Memory) DeleteFolder(_ context.Context, ownerID, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	folder, ok := m.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.folders, id)
	return nil
}

func (m *Memory) CreateTag(_ context.Context, tag model.Tag) (model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tags {
		if existing.OwnerID == tag.OwnerID && existing.Name == tag.Name {
			return model.Tag{}, ErrDuplicate
		}
	}
	tag.ID = primitive.NewObjectID()
	m.tags[tag.ID] = tag
	m.tagOrder = append(m.tagOrder, tag.ID)
	return tag, nil
}

func (m *Memory) FindTags(_ context.Context, ownerID primitive.ObjectID) ([]model.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []model.Tag{}
	for _, id := range m.tagOrder {
		tag, ok := m.tags[id]
		if !ok || tag.OwnerID != ownerID {
			continue
		}
		result = append(result, tag)
	}
	return result, nil
}

func (m *Memory) FindTagByID(_ context.Context, ownerID, id primitive.ObjectID) (model.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tag, ok := m.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return model.Tag{}, ErrNotFound
	}
	return tag, nil
}

func (m *Memory) FindTagsByIDs(_ context.Context, ownerID primitive.ObjectID, ids []primitive.ObjectID) ([]model.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []model.Tag{}
	for _, id := range ids {
		tag, ok := m.tags[id]
		if !ok || tag.OwnerID != ownerID {
			continue
		}
		result = append(result, tag)
	}
	return result, nil
}

func (m *Memory) UpdateTag(_ context.Context, tag model.Tag) (model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tags[tag.ID]
	if !ok || existing.OwnerID != tag.OwnerID {
		return model.Tag{}, ErrNotFound
	}
	for id, other := range m.tags {
		if id != tag.ID && other.OwnerID == tag.OwnerID && other.Name == tag.Name {
			return model.Tag{}, ErrDuplicate
		}
	}
	existing.Name = tag.Name
	m.tags[tag.ID] = existing
	return existing, nil
}

func (m *Memory) DeleteTag(_ context.Context, ownerID, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tag, ok := m.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.tags, id)
	return nil
}

func (m *Memory) CreateNote(_ context.Context, note model.Note) (model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note.ID = primitive.NewObjectID()
	m.notes[note.ID] = note
	m.noteOrder = append(m.noteOrder, note.ID)
	return note, nil
}

func (m *Memory) FindNotes(_ context.Context, filter NoteFilter) ([]model.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []model.Note{}
	for _, id := range m.noteOrder {
		note, ok := m.notes[id]
		if !ok || note.OwnerID != filter.OwnerID {
			continue
		}
		if filter.FolderID != nil && note.FolderID != *filter.FolderID {
			continue
		}
		if filter.TagID != nil && !containsID(note.Tags, *filter.TagID) {
			continue
		}
		if filter.Scored() {
			score := textScore(note.Title, note.Content, filter.SearchTerm)
			if score == 0 {
				continue
			}
			note.Score = score
		}
		result = append(result, note)
	}
	if filter.Scored() {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Score > result[j].Score
		})
	}
	return result, nil
}

func (m *Memory) FindNoteByID(_ context.Context, ownerID, id primitive.ObjectID) (model.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	note, ok := m.notes[id]
	if !ok || note.OwnerID != ownerID {
		return model.Note{}, ErrNotFound
	}
	return note, nil
}

func (m *Memory) UpdateNote(_ context.Context, note model.Note) (model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.notes[note.ID]
	if !ok || existing.OwnerID != note.OwnerID {
		return model.Note{}, ErrNotFound
	}
	existing.Title = note.Title
	existing.Content = note.Content
	existing.FolderID = note.FolderID
	existing.Tags = note.Tags
	m.notes[note.ID] = existing
	return existing, nil
}

func (m *Memory) DeleteNote(_ context.Context, ownerID, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[id]
	if !ok || note.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *Memory) CountNotesInFolder(_ context.Context, ownerID, folderID primitive.ObjectID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, note := range m.notes {
		if note.OwnerID == ownerID && note.FolderID == folderID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) PullTagFromNotes(_ context.Context, ownerID, tagID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var modified int64
	for id, note := range m.notes {
		if note.OwnerID != ownerID || !containsID(note.Tags, tagID) {
			continue
		}
		kept := note.Tags[:0:0]
		for _, t := range note.Tags {
			if t != tagID {
				kept = append(kept, t)
			}
		}
		note.Tags = kept
		m.notes[id] = note
		modified++
	}
	return modified, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// textScore approximates Mongo's textScore: per search word, matches in the
// title and content both count, normalized by document length so short notes
// that mention the term rank above long ones. Exact values are not part of
// the contract; "matching notes only, descending order" is.
func textScore(title, content, term string) float64 {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 {
		return 0
	}
	doc := strings.Fields(strings.ToLower(title + " " + content))
	if len(doc) == 0 {
		return 0
	}
	var hits int
	for _, docWord := range doc {
		trimmed := strings.Trim(docWord, ".,;:!?\"'()")
		for _, w := range words {
			if trimmed == w {
				hits++
			}
		}
	}
	if hits == 0 {
		return 0
	}
	return float64(hits) / float64(len(doc))
}
