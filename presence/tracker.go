// Package presence tracks which usernames currently hold a live connection
// to this process and pushes the online set to every connected peer.
package presence

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"pq-messenger/contract"
	"pq-messenger/domain"
	"pq-messenger/domain/event"
	"pq-messenger/observability"

	"github.com/samber/lo"
)

type session struct {
	username string
	sink     contract.EventSink
}

// Tracker holds one entry per live connection. A username maps to at most
// one connection: the most recent connect wins. A superseded connection stays
// in the broadcast set until it disconnects, but no longer counts as the
// username's entry.
type Tracker struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sessions    map[string]session // connection id -> session
	connections map[string]string  // username -> connection id
}

func NewTracker(log *slog.Logger) *Tracker {
	return &Tracker{
		log:         log,
		sessions:    make(map[string]session),
		connections: make(map[string]string),
	}
}

// Connect registers username on connectionID, replacing any previous
// connection of the same username, then broadcasts the online set.
func (t *Tracker) Connect(ctx context.Context, username, connectionID string, sink contract.EventSink) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if previous, ok := t.connections[username]; ok && previous != connectionID {
		t.log.Debug("Connection superseded", "username", username, "connection_id", previous)
	}
	if existing, ok := t.sessions[connectionID]; ok && existing.username != username &&
		t.connections[existing.username] == connectionID {
		delete(t.connections, existing.username)
	}
	t.sessions[connectionID] = session{username: username, sink: sink}
	t.connections[username] = connectionID

	t.log.Info("User connected", "username", username, "connection_id", connectionID)
	t.broadcastLocked(ctx)
}

// Disconnect removes the connection. The online set only changes when
// connectionID is the username's current connection; unknown ids are ignored.
func (t *Tracker) Disconnect(ctx context.Context, connectionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[connectionID]
	if !ok {
		return
	}
	delete(t.sessions, connectionID)
	if t.connections[s.username] != connectionID {
		t.log.Debug("Superseded connection closed", "username", s.username, "connection_id", connectionID)
		return
	}
	delete(t.connections, s.username)

	t.log.Info("User disconnected", "username", s.username, "connection_id", connectionID)
	t.broadcastLocked(ctx)
}

// Online returns the sorted set of connected usernames.
func (t *Tracker) Online() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onlineLocked()
}

// Entries returns a snapshot of every presence entry.
func (t *Tracker) Entries() []domain.PresenceEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entries := lo.MapToSlice(t.connections, func(username, connectionID string) domain.PresenceEntry {
		return domain.PresenceEntry{Username: username, ConnectionID: connectionID}
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Username < entries[j].Username })
	return entries
}

func (t *Tracker) onlineLocked() []string {
	usernames := lo.Keys(t.connections)
	sort.Strings(usernames)
	return usernames
}

// broadcastLocked runs with the write lock held so that every peer sees
// transitions in the same order. The caller's cancellation is dropped: a
// disconnect is usually triggered by the leaving peer's context ending.
func (t *Tracker) broadcastLocked(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	online := t.onlineLocked()
	observability.OnlineUsers.Set(float64(len(online)))

	evt := event.OnlineUsersUpdated{Usernames: online, At: time.Now().UTC()}
	for connectionID, s := range t.sessions {
		if err := s.sink.Consume(ctx, evt); err != nil {
			t.log.Warn("Presence update not delivered",
				"username", s.username,
				"connection_id", connectionID,
				"error", err)
		}
	}
}
