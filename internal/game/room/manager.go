package room

import (
	"sync"

	"trivialan/internal/config"
	"trivialan/internal/logger"
	"trivialan/internal/match"
	"trivialan/internal/question"
	"trivialan/internal/server/types"
)

// Manager is the process-wide room registry. Joining an unknown room ID
// creates it, with the first joiner as host; the last player leaving
// destroys it.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room

	cfg     *config.GameConfig
	pool    *question.Pool
	matcher *match.Matcher
}

// NewManager builds a registry wired to the shared question pool and the
// answer matcher.
func NewManager(cfg *config.GameConfig, pool *question.Pool) *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		cfg:     cfg,
		pool:    pool,
		matcher: match.New(cfg.FuzzyThreshold),
	}
}

// Join puts the client into the named room, creating the room when it does
// not exist yet. The first joiner becomes host.
func (m *Manager) Join(client types.ClientInterface, roomID, name string) (room *Room, isHost, started bool, err error) {
	m.mu.Lock()
	room, created := m.rooms[roomID], false
	if room == nil {
		room = newRoom(roomID, client.GetID(), m.cfg, m.pool, m.matcher)
		m.rooms[roomID] = room
		created = true
	}
	m.mu.Unlock()

	isHost, started, err = room.join(client, name, m.cfg.MaxPlayersPerRoom)
	if err != nil {
		if created {
			m.dropIfEmpty(roomID)
		}
		return nil, false, false, err
	}

	if created {
		logger.LogInfo("room %s created by %s", roomID, name)
	}
	logger.LogInfo("player %s joined room %s", name, roomID)
	return room, isHost, started, nil
}

// Leave removes the client from the room it is in. Empty rooms are deleted
// from the registry. It returns the departed player's name, "" when the
// client was not a member.
func (m *Manager) Leave(client types.ClientInterface) string {
	roomID := client.GetRoom()
	if roomID == "" {
		return ""
	}
	client.SetRoom("")

	room := m.Get(roomID)
	if room == nil {
		return ""
	}

	name, empty := room.leave(client.GetID())
	if empty {
		m.mu.Lock()
		delete(m.rooms, roomID)
		m.mu.Unlock()
		logger.LogInfo("room %s destroyed", roomID)
	}
	if name != "" {
		logger.LogInfo("player %s left room %s", name, roomID)
	}
	return name
}

// Get returns the room by ID, or nil.
func (m *Manager) Get(roomID string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[roomID]
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

func (m *Manager) dropIfEmpty(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[roomID]; ok && room.PlayerCount() == 0 {
		delete(m.rooms, roomID)
	}
}
