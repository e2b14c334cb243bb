// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Games live only as long as the process; there is no durable backend.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs the caller's mutation under the write lock, which is what
//     serializes rolls against a single game.
//   - Bounded: when full, the oldest completed game is evicted; if every
//     stored game is still in progress Save returns ErrFull.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/bowling/internal/game"
)

var (
	// ErrNotFound is returned for unknown game IDs.
	ErrNotFound = errors.New("not found")
	// ErrFull is returned by Save when capacity is reached and nothing can be evicted.
	ErrFull = errors.New("store full")
)

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save adds or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID.
	// The returned game must not be mutated; use Update for that.
	Get(ctx context.Context, id string) (*game.Game, error)

	// View runs fn against the stored game under shared access. fn must not
	// mutate the game.
	View(ctx context.Context, id string, fn func(*game.Game) error) error

	// Update runs fn against the stored game while holding exclusive access.
	Update(ctx context.Context, id string, fn func(*game.Game) error) error

	// Delete removes a game. Deleting an unknown ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Len reports the number of stored games.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex          // guards games and order
	games map[string]*game.Game // keyed by Game.ID
	order []string              // insertion order, oldest first
	limit int                   // 0 means unbounded
}

// NewMemoryStore constructs a new in-memory Store holding at most limit games.
// limit <= 0 disables the bound.
func NewMemoryStore(limit int) Store {
	return &memory{games: make(map[string]*game.Game), limit: limit}
}

// Save adds or updates the game in the map.
func (m *memory) Save(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		m.games[g.ID] = g
		return nil
	}
	if m.limit > 0 && len(m.games) >= m.limit && !m.evictLocked() {
		return ErrFull
	}
	m.games[g.ID] = g
	m.order = append(m.order, g.ID)
	return nil
}

// evictLocked drops the oldest completed game. Caller holds m.mu.
func (m *memory) evictLocked() bool {
	for i, id := range m.order {
		if g := m.games[id]; g != nil && g.Complete() {
			delete(m.games, id)
			m.order = append(m.order[:i], m.order[i+1:]...)
			return true
		}
	}
	return false
}

// Get looks up a game by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

func (m *memory) View(ctx context.Context, id string, fn func(*game.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	return fn(g)
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	return fn(g)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrNotFound
	}
	delete(m.games, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
