package mint

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]Session)}
}

// Save stores a copy of session
func (m *MemoryStore) Save(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

// Get returns a copy of the stored session
func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// ListByStates returns sessions in any of states, oldest first
func (m *MemoryStore) ListByStates(_ context.Context, states ...State) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		for _, state := range states {
			if session.State == state {
				s := session
				result = append(result, &s)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a session
func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// GormStore persists sessions in the mint_sessions table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Models returns the tables this store needs migrated
func Models() []interface{} {
	return []interface{}{&Session{}}
}

// Save upserts session
func (g *GormStore) Save(ctx context.Context, session *Session) error {
	return g.db.WithContext(ctx).Save(session).Error
}

// Get loads one session
func (g *GormStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	err := g.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByStates returns sessions in any of states, oldest first
func (g *GormStore) ListByStates(ctx context.Context, states ...State) ([]*Session, error) {
	var sessions []*Session
	err := g.db.WithContext(ctx).
		Where("state IN ?", states).
		Order("created_at").
		Find(&sessions).Error
	return sessions, err
}

// Delete removes a session
func (g *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Delete(&Session{}, "id = ?", id).Error
}
