package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"moral-game-server/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound возвращается при обращении к несуществующей или завершенной сессии.
var ErrNotFound = errors.New("session not found")

// Session хранит состояние одной игровой сессии.
// Мутации выполняются только под mu через Store.WithSession,
// чтобы два параллельных хода по одному id не перемешали историю.
type Session struct {
	ID           string
	StoryContext string
	Messages     []model.Message
	MoralScore   int
	Turns        int
	Ended        bool

	mu sync.Mutex
}

// AppendStory дописывает очередной фрагмент истории через пробел.
func (s *Session) AppendStory(story string) {
	if s.StoryContext == "" {
		s.StoryContext = story
		return
	}
	s.StoryContext += " " + story
}

// LastAssistantContent возвращает содержимое последнего сообщения ассистента.
func (s *Session) LastAssistantContent() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == model.RoleAssistant {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// Store — in-memory хранилище сессий. Карта инжектируется при создании,
// чтобы тесты могли конструировать изолированные хранилища.
// Доступ к карте защищен RWMutex, мутации каждой сессии сериализуются
// ее собственным мьютексом: ходы по разным id идут параллельно.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	counter  atomic.Uint64
}

// NewStore создает хранилище. Если backing == nil, создается новая карта.
func NewStore(backing map[string]*Session) *Store {
	if backing == nil {
		backing = make(map[string]*Session)
	}
	return &Store{sessions: backing}
}

// newID генерирует идентификатор вида game_<счетчик>_<случайный суффикс>.
// Уникальность обеспечивается случайностью, коллизии считаем пренебрежимыми.
func (st *Store) newID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("game_%d_%s", st.counter.Add(1), suffix)
}

// Create создает новую сессию с заданной историей сообщений.
// Контекст истории и счет инициализируются пустыми.
func (st *Store) Create(messages []model.Message) *Session {
	s := &Session{
		ID:       st.newID(),
		Messages: messages,
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Get возвращает сессию по id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// WithSession выполняет fn под мьютексом сессии. Если сессия была
// завершена пока мы ждали блокировку, возвращает ErrNotFound —
// параллельный End выигрывает.
func (st *Store) WithSession(id string, fn func(s *Session) error) error {
	s, err := st.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Ended {
		return ErrNotFound
	}
	return fn(s)
}

// Delete завершает и удаляет сессию. Возвращает ErrNotFound, если ее нет:
// повторное завершение — ошибка клиента, не идемпотентная операция.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	// Помечаем под мьютексом сессии: уже начавшийся ход увидит флаг
	// и завершится с ErrNotFound вместо записи в удаленную сессию.
	s.mu.Lock()
	s.Ended = true
	s.mu.Unlock()

	return nil
}

// Len возвращает число активных сессий.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
