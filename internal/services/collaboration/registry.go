// Package collaboration implements the room coordinator: it tracks
// room membership and liveness, serializes and persists mutations, and
// fans them out to connected peers.
package collaboration

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/adeebik/eraser/internal/models"
)

// Coordinator error taxonomy. Per-message failures answer with an error
// frame and keep the connection open; only a failed credential check at
// connect time closes the transport.
var (
	ErrRoomNotFound     = errors.New("room does not exist")
	ErrAccessDenied     = errors.New("access denied")
	ErrNotJoined        = errors.New("not joined to a room")
	ErrMalformedMessage = errors.New("invalid message format")
)

// ChatStore is the mutation-log persistence consumed by the registry.
type ChatStore interface {
	Log(ctx context.Context, roomID string) ([]models.Chat, error)
	Append(ctx context.Context, roomID, userID, message string) error
	ReplaceAt(ctx context.Context, roomID string, index int, message string) error
	ReplaceAll(ctx context.Context, roomID, userID string, messages []string) error
	DeleteAll(ctx context.Context, roomID string) error
}

// RoomStore resolves durable room records and memberships.
type RoomStore interface {
	FindByID(ctx context.Context, roomID string) (*models.Room, error)
	FindMembership(ctx context.Context, roomID, userID string) (bool, error)
}

// UserStore resolves display names for presence events.
type UserStore interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Peer is the outbound half of a member's connection. Enqueue must not
// block; it reports false when the peer's buffer is full.
type Peer interface {
	Enqueue(msg []byte) bool
}

// Config tunes the registry's background maintenance.
type Config struct {
	// OfflineTTL is how long a disconnected member keeps its roster
	// entry before the cleanup pass purges it.
	OfflineTTL time.Duration
	// CleanupInterval is the period of the maintenance ticker.
	CleanupInterval time.Duration
}

// DefaultConfig returns the production maintenance defaults.
func DefaultConfig() Config {
	return Config{
		OfflineTTL:      5 * time.Minute,
		CleanupInterval: 30 * time.Second,
	}
}

// member is one roster entry. peer is nil while the member is offline.
type member struct {
	userID   string
	name     string
	role     models.Role
	peer     Peer
	lastSeen time.Time
}

// room is the in-memory coordination state of one live room. mu
// serializes mutation handling so the persisted log order matches the
// broadcast order (durable-before-visible).
type room struct {
	id      string
	adminID string
	mu      sync.Mutex
	members map[string]*member
}

// RoomRegistry owns the room/member directory. It is constructed with
// injected persistence dependencies so tests can run isolated
// registries against fake stores.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*room

	chats ChatStore
	store RoomStore
	users UserStore

	cfg  Config
	done chan struct{}
}

// NewRoomRegistry builds a registry over the given stores.
func NewRoomRegistry(chats ChatStore, store RoomStore, users UserStore, cfg Config) *RoomRegistry {
	if cfg.OfflineTTL <= 0 {
		cfg.OfflineTTL = DefaultConfig().OfflineTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}
	return &RoomRegistry{
		rooms: make(map[string]*room),
		chats: chats,
		store: store,
		users: users,
		cfg:   cfg,
		done:  make(chan struct{}),
	}
}

// Start launches the background cleanup loop.
func (r *RoomRegistry) Start() {
	go r.cleanupLoop()
}

// Shutdown stops background maintenance.
func (r *RoomRegistry) Shutdown() {
	close(r.done)
}

// liveRoom returns the tracked room, creating it on first join.
func (r *RoomRegistry) liveRoom(roomID, adminID string) *room {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{id: roomID, adminID: adminID, members: make(map[string]*member)}
		r.rooms[roomID] = rm
	}
	return rm
}

// lookupRoom returns the tracked room without creating it.
func (r *RoomRegistry) lookupRoom(roomID string) (*room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	return rm, ok
}

// join attaches a verified peer to the room roster. An existing entry is
// re-attached rather than duplicated; the return value reports whether
// this was a reconnect.
func (r *RoomRegistry) join(roomID, adminID, userID, name string, role models.Role, p Peer) bool {
	rm := r.liveRoom(roomID, adminID)
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if m, ok := rm.members[userID]; ok {
		m.peer = p
		m.name = name
		m.lastSeen = time.Now()
		return true
	}
	rm.members[userID] = &member{
		userID:   userID,
		name:     name,
		role:     role,
		peer:     p,
		lastSeen: time.Now(),
	}
	return false
}

// leave removes the member entry entirely.
func (r *RoomRegistry) leave(roomID, userID string) {
	rm, ok := r.lookupRoom(roomID)
	if !ok {
		return
	}
	rm.mu.Lock()
	delete(rm.members, userID)
	rm.mu.Unlock()
}

// markOffline keeps the roster entry but detaches its peer. The cleanup
// pass purges the entry after the offline TTL. A stale connection that
// was already replaced by a reconnect does not detach the new peer.
func (r *RoomRegistry) markOffline(roomID, userID string, p Peer) bool {
	rm, ok := r.lookupRoom(roomID)
	if !ok {
		return false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	m, ok := rm.members[userID]
	if !ok || m.peer == nil || m.peer != p {
		return false
	}
	m.peer = nil
	m.lastSeen = time.Now()
	return true
}

// broadcast sends msg to every online member of the room except the
// user identified by exceptUserID.
func (r *RoomRegistry) broadcast(roomID, exceptUserID string, msg []byte) {
	rm, ok := r.lookupRoom(roomID)
	if !ok {
		return
	}
	rm.mu.Lock()
	peers := make([]Peer, 0, len(rm.members))
	for id, m := range rm.members {
		if id == exceptUserID || m.peer == nil {
			continue
		}
		peers = append(peers, m.peer)
	}
	rm.mu.Unlock()

	for _, p := range peers {
		if !p.Enqueue(msg) {
			log.Printf("dropping relay to slow peer in room %s", roomID)
		}
	}
}

// Presences returns the current roster of a room.
func (r *RoomRegistry) Presences(roomID string) []models.Presence {
	rm, ok := r.lookupRoom(roomID)
	if !ok {
		return nil
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]models.Presence, 0, len(rm.members))
	for _, m := range rm.members {
		out = append(out, models.Presence{
			UserID:   m.userID,
			Name:     m.name,
			Role:     m.role,
			Online:   m.peer != nil,
			LastSeen: m.lastSeen,
		})
	}
	return out
}

func (r *RoomRegistry) cleanupLoop() {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.cleanup(time.Now())
		}
	}
}

// cleanup purges members offline beyond the TTL and rooms left with no
// members. It only touches the in-memory directory; durable memberships
// are unaffected.
func (r *RoomRegistry) cleanup(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rm := range r.rooms {
		rm.mu.Lock()
		for userID, m := range rm.members {
			if m.peer == nil && now.Sub(m.lastSeen) > r.cfg.OfflineTTL {
				delete(rm.members, userID)
				log.Printf("purged offline member %s from room %s", userID, id)
			}
		}
		empty := len(rm.members) == 0
		rm.mu.Unlock()
		if empty {
			delete(r.rooms, id)
			log.Printf("purged empty room %s", id)
		}
	}
}
