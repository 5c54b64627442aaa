package session_test

import (
	"fmt"
	"sync"
	"testing"

	"moral-game-server/internal/model"
	"moral-game-server/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessages() []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: "system prompt"},
		{Role: model.RoleUser, Content: "user prompt"},
		{Role: model.RoleAssistant, Content: "assistant reply"},
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := session.NewStore(nil)

	s := store.Create(seedMessages())
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 0, s.MoralScore)
	assert.Equal(t, "", s.StoryContext)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, store.Delete(s.ID))
	assert.Equal(t, 0, store.Len())

	_, err = store.Get(s.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Повторное удаление — ошибка, не идемпотентная операция
	assert.ErrorIs(t, store.Delete(s.ID), session.ErrNotFound)
}

func TestStoreUniqueIDs(t *testing.T) {
	store := session.NewStore(nil)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := store.Create(seedMessages())
		assert.False(t, seen[s.ID], "duplicate session id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestWithSession(t *testing.T) {
	store := session.NewStore(nil)
	s := store.Create(seedMessages())

	err := store.WithSession(s.ID, func(s *session.Session) error {
		s.MoralScore += 2
		s.AppendStory("The first chapter.")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.MoralScore)
	assert.Equal(t, "The first chapter.", s.StoryContext)

	err = store.WithSession(s.ID, func(s *session.Session) error {
		s.AppendStory("The second chapter.")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "The first chapter. The second chapter.", s.StoryContext)

	assert.ErrorIs(t, store.WithSession("game_0_missing", func(*session.Session) error {
		return nil
	}), session.ErrNotFound)
}

func TestWithSessionAfterDelete(t *testing.T) {
	store := session.NewStore(nil)
	s := store.Create(seedMessages())
	require.NoError(t, store.Delete(s.ID))

	called := false
	err := store.WithSession(s.ID, func(*session.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.False(t, called)
}

// TestConcurrentSessionsIsolation проверяет, что параллельные мутации разных
// сессий не перемешивают их истории сообщений.
func TestConcurrentSessionsIsolation(t *testing.T) {
	store := session.NewStore(nil)
	const sessions = 8
	const turns = 50

	ids := make([]string, sessions)
	for i := range ids {
		ids[i] = store.Create(seedMessages()).ID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for turn := 0; turn < turns; turn++ {
				err := store.WithSession(id, func(s *session.Session) error {
					s.Messages = append(s.Messages,
						model.Message{Role: model.RoleUser, Content: fmt.Sprintf("s%d-user-%d", i, turn)},
						model.Message{Role: model.RoleAssistant, Content: fmt.Sprintf("s%d-assistant-%d", i, turn)},
					)
					return nil
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		s, err := store.Get(id)
		require.NoError(t, err)
		require.Len(t, s.Messages, 3+2*turns)
		// Инвариант чередования и принадлежность сессии
		for j := 3; j < len(s.Messages); j++ {
			expectedRole := model.RoleUser
			if (j-3)%2 == 1 {
				expectedRole = model.RoleAssistant
			}
			assert.Equal(t, expectedRole, s.Messages[j].Role)
			assert.Contains(t, s.Messages[j].Content, fmt.Sprintf("s%d-", i))
		}
	}
}

// TestConcurrentSameSession проверяет сериализацию мутаций одной сессии.
func TestConcurrentSameSession(t *testing.T) {
	store := session.NewStore(nil)
	s := store.Create(seedMessages())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithSession(s.ID, func(s *session.Session) error {
				s.MoralScore++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, s.MoralScore)
}

func TestInjectedBackingMap(t *testing.T) {
	backing := make(map[string]*session.Session)
	store := session.NewStore(backing)

	s := store.Create(seedMessages())
	assert.Same(t, s, backing[s.ID])
}
