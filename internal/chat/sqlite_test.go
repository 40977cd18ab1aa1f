package chat

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	db := newSQLiteStore(t)

	page := 3
	now := time.Now()
	session := &Session{
		ID:        "session-1",
		Title:     "My research",
		CreatedAt: now,
		UpdatedAt: now,
		Messages: []Message{
			{ID: "m1", Role: RoleUser, Content: "question", Timestamp: now},
			{ID: "m2", Role: RoleAssistant, Content: "answer", Timestamp: now.Add(time.Second), Sources: []Source{
				{Name: "paper.pdf", Page: &page},
			}},
		},
	}
	require.NoError(t, db.SaveSession(session))

	loaded, err := db.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, "session-1", got.ID)
	assert.Equal(t, "My research", got.Title)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleUser, got.Messages[0].Role)
	assert.Equal(t, "question", got.Messages[0].Content)
	assert.WithinDuration(t, now, got.Messages[0].Timestamp, time.Second)
	require.Len(t, got.Messages[1].Sources, 1)
	assert.Equal(t, "paper.pdf", got.Messages[1].Sources[0].Name)
	require.NotNil(t, got.Messages[1].Sources[0].Page)
	assert.Equal(t, 3, *got.Messages[1].Sources[0].Page)
}

func TestSQLiteSaveSessionUpserts(t *testing.T) {
	db := newSQLiteStore(t)

	now := time.Now()
	session := &Session{ID: "session-1", Title: DefaultTitle, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.SaveSession(session))

	session.Title = "retitled"
	session.Messages = append(session.Messages, Message{ID: "m1", Role: RoleUser, Content: "hi", Timestamp: now})
	require.NoError(t, db.SaveSession(session))

	loaded, err := db.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "retitled", loaded[0].Title)
	assert.Len(t, loaded[0].Messages, 1)
}

func TestSQLiteDeleteSession(t *testing.T) {
	db := newSQLiteStore(t)

	now := time.Now()
	require.NoError(t, db.SaveSession(&Session{ID: "keep", Title: "keep", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, db.SaveSession(&Session{ID: "drop", Title: "drop", CreatedAt: now, UpdatedAt: now, Messages: []Message{
		{ID: "m1", Role: RoleUser, Content: "bye", Timestamp: now},
	}}))

	require.NoError(t, db.DeleteSession("drop"))

	loaded, err := db.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "keep", loaded[0].ID)
}

func TestSQLiteClear(t *testing.T) {
	db := newSQLiteStore(t)

	now := time.Now()
	require.NoError(t, db.SaveSession(&Session{ID: "session-1", Title: "t", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, db.Clear())

	loaded, err := db.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestPersistentStoreReloadsSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.db")

	db, err := NewSQLiteStore(path)
	require.NoError(t, err)
	store, err := NewPersistentStore(db)
	require.NoError(t, err)
	id := store.CreateSession("")
	require.NoError(t, store.AddMessage(id, NewUserMessage("remember me")))
	require.NoError(t, db.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	restored, err := NewPersistentStore(reopened)
	require.NoError(t, err)

	session := restored.Session(id)
	require.NotNil(t, session)
	assert.Equal(t, "remember me", session.Title)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "remember me", session.Messages[0].Content)
}
