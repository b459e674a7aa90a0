package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomchat/internal/log"
)

// SendFunc delivers one encoded frame to a single client. It must not block
// for long: Room.Broadcast calls it while holding the room lock.
type SendFunc func(data []byte) error

type sessionState int

const (
	stateUnjoined sessionState = iota
	stateJoined
	stateClosed
)

// Session mediates between one client connection and its Room. The Room is
// fixed when the Session is created; the display name is fixed by the first
// join message.
type Session struct {
	id          string
	room        *Room
	send        SendFunc
	jokes       JokeSource
	jokeTimeout time.Duration
	logger      zerolog.Logger

	// lifecycle orders join against close so a closed session never
	// re-enters its room. Lock order: lifecycle, then room, then mu.
	lifecycle sync.Mutex

	mu    sync.RWMutex
	state sessionState
	name  string
}

// SessionOption customises a Session at construction.
type SessionOption func(*Session)

// WithJokeSource sets where "/joke" requests are answered from.
func WithJokeSource(source JokeSource) SessionOption {
	return func(s *Session) {
		s.jokes = source
	}
}

// WithJokeTimeout bounds each joke fetch. Zero leaves the fetch bounded only by
// the caller's context.
func WithJokeTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		s.jokeTimeout = timeout
	}
}

// WithLogger sets the session's logger.
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithID overrides the generated session identifier.
func WithID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// NewSession creates an unjoined Session bound to room. It does not become a
// member of room until HandleJoin.
func NewSession(room *Room, send SendFunc, opts ...SessionOption) *Session {
	s := &Session{
		id:     uuid.NewString(),
		room:   room,
		send:   send,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().
		Str(log.FieldSessionID, s.id).
		Str(log.FieldRoom, room.Name()).
		Logger()

	s.logger.Debug().Msg("session created")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Room returns the room the session is bound to.
func (s *Session) Room() *Room {
	return s.room
}

// Name returns the display name and whether the session has joined.
func (s *Session) Name() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.name, s.state == stateJoined
}

// Send hands data to the client. Delivery is best effort: a failure is logged
// and dropped, never returned, so one dead client cannot interrupt a broadcast.
func (s *Session) Send(data []byte) {
	if err := s.send(data); err != nil {
		s.logger.Debug().Err(err).Msg("dropping frame for unreachable client")
	}
}

func (s *Session) sendJSON(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode frame")
		return
	}
	s.Send(data)
}

// HandleMessage parses one inbound frame and performs the command it carries.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) error {
	cmd, err := ParseCommand(raw)
	if err != nil {
		return err
	}

	switch c := cmd.(type) {
	case JoinCommand:
		return s.HandleJoin(c.Name)
	case PrivateCommand:
		return s.PrivateMessage(c.Username, c.Message)
	case JokeCommand:
		return s.SendJoke(ctx)
	case ChatCommand:
		return s.HandleChat(c.Text)
	default:
		return fmt.Errorf("%w: %T", ErrBadMessageType, cmd)
	}
}

// HandleJoin names the session, adds it to its room and announces it to every
// member, the newcomer included.
func (s *Session) HandleJoin(name string) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	switch s.state {
	case stateJoined:
		s.mu.Unlock()
		return ErrAlreadyJoined
	case stateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.name = name
	s.state = stateJoined
	s.mu.Unlock()

	s.room.Join(s)
	s.logger.Info().Str(log.FieldUsername, name).Msg("user joined")
	s.room.Broadcast(NewNote(fmt.Sprintf("%s joined \"%s\".", name, s.room.Name())))
	return nil
}

// HandleChat broadcasts text to the room under the session's name.
func (s *Session) HandleChat(text string) error {
	name, err := s.joinedName()
	if err != nil {
		return err
	}

	s.room.Broadcast(ChatMessage{Name: name, Type: TypeChat, Text: text})
	return nil
}

// PrivateMessage delivers message to the first room member named username.
// Nothing is sent when no member has that name.
func (s *Session) PrivateMessage(username, message string) error {
	name, err := s.joinedName()
	if err != nil {
		return err
	}

	recipient, ok := s.room.Find(username)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecipientNotFound, username)
	}

	recipient.sendJSON(PrivateMessage{Type: TypeChat, Message: message, Name: name})
	return nil
}

// SendJoke fetches a joke and sends it as a note to this session only. It
// blocks the caller until the joke source answers; a failure is returned
// wrapped in ErrJokeUnavailable and not retried.
func (s *Session) SendJoke(ctx context.Context) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	if s.jokes == nil {
		return fmt.Errorf("%w: no joke source configured", ErrJokeUnavailable)
	}

	if s.jokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jokeTimeout)
		defer cancel()
	}

	joke, err := s.jokes.FetchJoke(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJokeUnavailable, err)
	}

	if s.Closed() {
		s.logger.Debug().Msg("dropping joke for closed session")
		return nil
	}
	s.logger.Debug().Str("joke", joke).Msg("joke fetched")
	s.sendJSON(NewNote(joke))
	return nil
}

// HandleClose removes the session from its room and tells the remaining
// members. A session that never joined leaves silently. It may run while a
// command is still in flight; the session refuses every command afterwards.
// Later calls do nothing.
func (s *Session) HandleClose() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	prev, name := s.state, s.name
	s.state = stateClosed
	s.mu.Unlock()

	switch prev {
	case stateClosed:
		return
	case stateUnjoined:
		s.room.Leave(s)
		s.logger.Debug().Msg("unjoined session closed")
		return
	}

	s.room.Leave(s)
	s.logger.Info().Str(log.FieldUsername, name).Msg("user left")
	s.room.Broadcast(NewNote(fmt.Sprintf("%s left %s.", name, s.room.Name())))
}

// Closed reports whether HandleClose has run.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state == stateClosed
}

func (s *Session) joinedName() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.state {
	case stateJoined:
		return s.name, nil
	case stateClosed:
		return "", ErrSessionClosed
	default:
		return "", ErrNotJoined
	}
}
