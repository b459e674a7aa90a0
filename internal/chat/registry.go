package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomchat/internal/log"
)

// Registry maps room names to Rooms. Rooms are created on first reference and
// live as long as the Registry; an empty Room is kept, not removed.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	logger zerolog.Logger
}

// NewRegistry returns an empty Registry whose Rooms log through logger.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		logger: logger,
	}
}

// Get returns the Room called name, creating it if this is the first request
// for that name. Concurrent callers asking for the same new name all receive
// the same instance.
func (r *Registry) Get(name string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[name]; ok {
		return room
	}

	room := newRoom(name, r.logger.With().Str(log.FieldRoom, name).Logger())
	r.rooms[name] = room
	r.logger.Info().Str(log.FieldRoom, name).Int("rooms", len(r.rooms)).Msg("room created")
	return room
}

// Stats reports how many rooms exist and how many sessions they hold in total.
func (r *Registry) Stats() (rooms, members int) {
	r.mu.Lock()
	snapshot := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		snapshot = append(snapshot, room)
	}
	r.mu.Unlock()

	for _, room := range snapshot {
		members += room.Len()
	}
	return len(snapshot), members
}
