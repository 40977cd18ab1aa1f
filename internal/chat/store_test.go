package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionBecomesCurrent(t *testing.T) {
	store := NewStore()

	id := store.CreateSession("")

	assert.Equal(t, id, store.CurrentSessionID())
	session := store.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, DefaultTitle, session.Title)
	assert.Empty(t, session.Messages)
}

func TestFirstUserMessageSetsTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		title   string
	}{
		{name: "short message kept whole", content: "hello", title: "hello"},
		{
			name:    "exactly thirty runes kept whole",
			content: strings.Repeat("a", 30),
			title:   strings.Repeat("a", 30),
		},
		{
			name:    "longer message truncated with ellipsis",
			content: strings.Repeat("a", 31),
			title:   strings.Repeat("a", 30) + "...",
		},
		{
			name:    "truncation counts runes not bytes",
			content: strings.Repeat("é", 31),
			title:   strings.Repeat("é", 30) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			id := store.CreateSession("")

			require.NoError(t, store.AddMessage(id, NewUserMessage(tt.content)))
			assert.Equal(t, tt.title, store.Session(id).Title)
		})
	}
}

func TestSecondUserMessageNeverRetitles(t *testing.T) {
	store := NewStore()
	id := store.CreateSession("")

	require.NoError(t, store.AddMessage(id, NewUserMessage("first question")))
	require.NoError(t, store.AddMessage(id, NewUserMessage("second question")))

	assert.Equal(t, "first question", store.Session(id).Title)
}

func TestCustomTitleNeverRetitled(t *testing.T) {
	store := NewStore()
	id := store.CreateSession("My research")

	require.NoError(t, store.AddMessage(id, NewUserMessage("first question")))

	assert.Equal(t, "My research", store.Session(id).Title)
}

func TestAssistantMessageDoesNotTitle(t *testing.T) {
	store := NewStore()
	id := store.CreateSession("")

	require.NoError(t, store.AddMessage(id, NewAssistantMessage("an answer", nil)))

	assert.Equal(t, DefaultTitle, store.Session(id).Title)
}

func TestAddMessageUnknownSession(t *testing.T) {
	store := NewStore()

	err := store.AddMessage("missing", NewUserMessage("hello"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAddMessageRefreshesUpdatedAt(t *testing.T) {
	store := NewStore()
	id := store.CreateSession("")
	before := store.Session(id).UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.AddMessage(id, NewUserMessage("hello")))

	assert.True(t, store.Session(id).UpdatedAt.After(before))
}

func TestRecentChatsOrderedAndCapped(t *testing.T) {
	store := NewStore()

	var ids []string
	for i := 0; i < 7; i++ {
		ids = append(ids, store.CreateSession(""))
	}
	// Touch the oldest session last so it jumps to the front.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.AddMessage(ids[0], NewUserMessage("bump")))

	recent := store.RecentChats()
	require.Len(t, recent, 5)
	assert.Equal(t, ids[0], recent[0].ID)
}

func TestDeleteCurrentSessionClearsPointer(t *testing.T) {
	store := NewStore()
	first := store.CreateSession("")
	second := store.CreateSession("")

	store.DeleteSession(second)

	assert.Empty(t, store.CurrentSessionID())
	assert.Nil(t, store.Session(second))
	assert.NotNil(t, store.Session(first))
}

func TestDeleteOtherSessionKeepsPointer(t *testing.T) {
	store := NewStore()
	first := store.CreateSession("")
	second := store.CreateSession("")

	store.DeleteSession(first)

	assert.Equal(t, second, store.CurrentSessionID())
}

func TestClearHistory(t *testing.T) {
	store := NewStore()
	store.CreateSession("")
	store.CreateSession("")

	store.ClearHistory()

	assert.Empty(t, store.Sessions())
	assert.Empty(t, store.CurrentSessionID())
	assert.Nil(t, store.CurrentSession())
}
