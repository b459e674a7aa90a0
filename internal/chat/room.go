package chat

import (
	"cmp"
	"encoding/json"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Room is one named channel and the set of Sessions currently in it.
type Room struct {
	name   string
	logger zerolog.Logger

	// mu also serializes Broadcast, so every member sees the room's messages
	// in the same order.
	mu      sync.Mutex
	members map[*Session]uint64
	seq     uint64
}

func newRoom(name string, logger zerolog.Logger) *Room {
	return &Room{
		name:    name,
		logger:  logger,
		members: make(map[*Session]uint64),
	}
}

// Name returns the room's registry key.
func (r *Room) Name() string {
	return r.name
}

// Join adds s to the room. Joining twice is a no-op.
func (r *Room) Join(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[s]; ok {
		return
	}
	r.seq++
	r.members[s] = r.seq
	r.logger.Debug().Int("members", len(r.members)).Msg("session joined room")
}

// Leave removes s from the room if it is a member.
func (r *Room) Leave(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[s]; !ok {
		return
	}
	delete(r.members, s)
	r.logger.Debug().Int("members", len(r.members)).Msg("session left room")
}

// Has reports whether s is a member.
func (r *Room) Has(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.members[s]
	return ok
}

// Len returns the number of members.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.members)
}

// Members returns a snapshot of the members in the order they joined.
func (r *Room) Members() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.orderedMembers()
}

// Find returns the earliest-joined member whose display name is name.
func (r *Room) Find(name string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.Find(r.orderedMembers(), func(s *Session) bool {
		joinedName, joined := s.Name()
		return joined && joinedName == name
	})
}

// Broadcast encodes payload once and hands it to every member. A member whose
// send fails is skipped silently; the rest of the room still receives it.
func (r *Room) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to encode broadcast")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for member := range r.members {
		member.Send(data)
	}
	r.logger.Debug().Int("members", len(r.members)).Msg("broadcast delivered")
}

// orderedMembers must be called with mu held.
func (r *Room) orderedMembers() []*Session {
	members := lo.Keys(r.members)
	slices.SortFunc(members, func(a, b *Session) int {
		return cmp.Compare(r.members[a], r.members[b])
	})
	return members
}
