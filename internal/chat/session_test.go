package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Tyrowin/roomchat/internal/mocks"
)

func handle(t *testing.T, s *Session, raw string) error {
	t.Helper()
	return s.HandleMessage(context.Background(), []byte(raw))
}

// TestSessionLobbyScenario walks two users through join, chat, a private
// message and a disconnect.
func TestSessionLobbyScenario(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room)
	bob, bobRec := newTestSession(room)

	require.NoError(t, handle(t, alice, `{"type":"join","name":"alice"}`))
	assert.Equal(t, []map[string]any{note(`alice joined "lobby".`)}, aliceRec.messages(t))

	require.NoError(t, handle(t, bob, `{"type":"join","name":"bob"}`))
	assert.Equal(t, note(`bob joined "lobby".`), aliceRec.messages(t)[1])
	assert.Equal(t, []map[string]any{note(`bob joined "lobby".`)}, bobRec.messages(t))

	aliceRec.reset()
	bobRec.reset()
	require.NoError(t, handle(t, alice, `{"type":"chat","text":"hi"}`))
	chat := map[string]any{"name": "alice", "type": "chat", "text": "hi"}
	assert.Equal(t, []map[string]any{chat}, aliceRec.messages(t))
	assert.Equal(t, []map[string]any{chat}, bobRec.messages(t))

	aliceRec.reset()
	bobRec.reset()
	require.NoError(t, handle(t, alice, `{"type":"chat","text":"/priv bob secret"}`))
	assert.Zero(t, aliceRec.callCount())
	assert.Equal(t, []map[string]any{
		{"type": "chat", "message": "secret", "name": "alice"},
	}, bobRec.messages(t))

	aliceRec.reset()
	bobRec.reset()
	bob.HandleClose()
	assert.Equal(t, []map[string]any{note("bob left lobby.")}, aliceRec.messages(t))
	assert.Zero(t, bobRec.callCount())
	assert.Equal(t, []*Session{alice}, room.Members())
}

// TestSessionPrivateMessageUnknownRecipient checks that a missing recipient
// fails the operation without sending anything to anyone.
func TestSessionPrivateMessageUnknownRecipient(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room)
	bob, bobRec := newTestSession(room)
	require.NoError(t, alice.HandleJoin("alice"))
	require.NoError(t, bob.HandleJoin("bob"))
	aliceRec.reset()
	bobRec.reset()

	err := alice.PrivateMessage("carol", "hello")

	require.ErrorIs(t, err, ErrRecipientNotFound)
	assert.Contains(t, err.Error(), "carol")
	assert.Zero(t, aliceRec.callCount())
	assert.Zero(t, bobRec.callCount())
}

// TestSessionPrivateMessageStaysInRoom ensures a same-named user in another
// room is not reachable.
func TestSessionPrivateMessageStaysInRoom(t *testing.T) {
	reg := newTestRegistry()
	alice, _ := newTestSession(reg.Get("lobby"))
	bob, bobRec := newTestSession(reg.Get("kitchen"))
	require.NoError(t, alice.HandleJoin("alice"))
	require.NoError(t, bob.HandleJoin("bob"))
	bobRec.reset()

	err := handle(t, alice, `{"type":"chat","text":"/priv bob psst"}`)

	require.ErrorIs(t, err, ErrRecipientNotFound)
	assert.Zero(t, bobRec.callCount())
}

func TestSessionPrivateMessageToSelf(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room)
	require.NoError(t, alice.HandleJoin("alice"))
	aliceRec.reset()

	require.NoError(t, alice.PrivateMessage("alice", "memo"))
	assert.Equal(t, []map[string]any{
		{"type": "chat", "message": "memo", "name": "alice"},
	}, aliceRec.messages(t))
}

// TestSessionJokeGoesToSenderOnly routes "/joke" to the joke source even though
// the frame is typed "chat".
func TestSessionJokeGoesToSenderOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	jokes := mocks.NewMockJokeSource(ctrl)
	jokes.EXPECT().FetchJoke(gomock.Any()).Return("Why did the scarecrow win? He was outstanding.", nil).Times(1)

	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room, WithJokeSource(jokes))
	bob, bobRec := newTestSession(room)
	require.NoError(t, alice.HandleJoin("alice"))
	require.NoError(t, bob.HandleJoin("bob"))
	aliceRec.reset()
	bobRec.reset()

	require.NoError(t, handle(t, alice, `{"type":"chat","text":"/joke"}`))

	assert.Equal(t, []map[string]any{
		note("Why did the scarecrow win? He was outstanding."),
	}, aliceRec.messages(t))
	assert.Zero(t, bobRec.callCount())
}

func TestSessionJokeFailure(t *testing.T) {
	errUpstream := errors.New("dial tcp: connection refused")

	ctrl := gomock.NewController(t)
	jokes := mocks.NewMockJokeSource(ctrl)
	jokes.EXPECT().FetchJoke(gomock.Any()).Return("", errUpstream)

	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room, WithJokeSource(jokes))
	require.NoError(t, alice.HandleJoin("alice"))
	aliceRec.reset()

	err := alice.SendJoke(context.Background())

	require.ErrorIs(t, err, ErrJokeUnavailable)
	require.ErrorIs(t, err, errUpstream)
	assert.Zero(t, aliceRec.callCount())
}

func TestSessionJokeTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	jokes := mocks.NewMockJokeSource(ctrl)
	jokes.EXPECT().FetchJoke(gomock.Any()).DoAndReturn(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room, WithJokeSource(jokes), WithJokeTimeout(20*time.Millisecond))

	err := alice.SendJoke(context.Background())

	require.ErrorIs(t, err, ErrJokeUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, aliceRec.callCount())
}

func TestSessionJokeWithoutSource(t *testing.T) {
	alice, _ := newTestSession(newTestRegistry().Get("lobby"))
	require.ErrorIs(t, alice.SendJoke(context.Background()), ErrJokeUnavailable)
}

// TestSessionRejectsActionsBeforeJoin covers the unjoined state.
func TestSessionRejectsActionsBeforeJoin(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "chat", raw: `{"type":"chat","text":"hi"}`},
		{name: "private", raw: `{"type":"chat","text":"/priv bob hi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRegistry().Get("lobby")
			bob, bobRec := newTestSession(room)
			require.NoError(t, bob.HandleJoin("bob"))
			bobRec.reset()
			lurker, lurkerRec := newTestSession(room)

			err := handle(t, lurker, tt.raw)

			require.ErrorIs(t, err, ErrNotJoined)
			assert.Zero(t, bobRec.callCount())
			assert.Zero(t, lurkerRec.callCount())
		})
	}
}

func TestSessionJoinOnlyOnce(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room)

	require.NoError(t, alice.HandleJoin("alice"))
	err := handle(t, alice, `{"type":"join","name":"mallory"}`)

	require.ErrorIs(t, err, ErrAlreadyJoined)
	name, joined := alice.Name()
	assert.True(t, joined)
	assert.Equal(t, "alice", name)
	assert.Equal(t, 1, aliceRec.callCount())
}

func TestSessionProtocolErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "malformed", raw: `{"type":`, wantErr: ErrMalformedPayload},
		{name: "bad type", raw: `{"type":"shout","text":"hey"}`, wantErr: ErrBadMessageType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRegistry().Get("lobby")
			alice, aliceRec := newTestSession(room)
			require.NoError(t, alice.HandleJoin("alice"))
			aliceRec.reset()

			require.ErrorIs(t, handle(t, alice, tt.raw), tt.wantErr)
			assert.Zero(t, aliceRec.callCount())
		})
	}
}

// TestSessionSendSwallowsFailures verifies a broken client cannot fail its own
// join or the broadcast to others.
func TestSessionSendSwallowsFailures(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	broken, brokenRec := newTestSession(room)
	brokenRec.err = errPipe
	healthy, healthyRec := newTestSession(room)

	require.NoError(t, broken.HandleJoin("ghost"))
	require.NoError(t, healthy.HandleJoin("alice"))
	require.NoError(t, broken.HandleChat("boo"))

	assert.Equal(t, 3, brokenRec.callCount())
	assert.Equal(t, []map[string]any{
		note(`alice joined "lobby".`),
		{"name": "ghost", "type": "chat", "text": "boo"},
	}, healthyRec.messages(t))
}

func TestSessionCloseUnjoined(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room)
	require.NoError(t, alice.HandleJoin("alice"))
	aliceRec.reset()
	lurker, _ := newTestSession(room)

	lurker.HandleClose()

	assert.Zero(t, aliceRec.callCount())
	assert.Equal(t, 1, room.Len())
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room)
	bob, _ := newTestSession(room)
	require.NoError(t, alice.HandleJoin("alice"))
	require.NoError(t, bob.HandleJoin("bob"))
	aliceRec.reset()

	bob.HandleClose()
	bob.HandleClose()

	assert.Equal(t, []map[string]any{note("bob left lobby.")}, aliceRec.messages(t))
	assert.False(t, room.Has(bob))
}

// TestSessionRefusesCommandsAfterClose keeps a closed session out of its room
// even when a join frame was still being handled as the connection dropped.
func TestSessionRefusesCommandsAfterClose(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room)
	require.NoError(t, alice.HandleJoin("alice"))
	ghost, _ := newTestSession(room)
	aliceRec.reset()

	ghost.HandleClose()

	require.ErrorIs(t, ghost.HandleJoin("ghost"), ErrSessionClosed)
	require.ErrorIs(t, ghost.HandleChat("boo"), ErrSessionClosed)
	require.ErrorIs(t, ghost.PrivateMessage("alice", "boo"), ErrSessionClosed)
	require.ErrorIs(t, ghost.SendJoke(context.Background()), ErrSessionClosed)
	assert.True(t, ghost.Closed())
	assert.False(t, room.Has(ghost))
	assert.Zero(t, aliceRec.callCount())
}

// TestSessionCloseDuringJokeFetch closes the session while its joke is still
// being fetched: the departure is announced at once and the late joke dropped.
func TestSessionCloseDuringJokeFetch(t *testing.T) {
	fetching := make(chan struct{})
	release := make(chan struct{})

	ctrl := gomock.NewController(t)
	jokes := mocks.NewMockJokeSource(ctrl)
	jokes.EXPECT().FetchJoke(gomock.Any()).DoAndReturn(func(context.Context) (string, error) {
		close(fetching)
		<-release
		return "too late", nil
	})

	room := newTestRegistry().Get("lobby")
	alice, aliceRec := newTestSession(room, WithJokeSource(jokes))
	bob, bobRec := newTestSession(room)
	require.NoError(t, alice.HandleJoin("alice"))
	require.NoError(t, bob.HandleJoin("bob"))
	aliceRec.reset()
	bobRec.reset()

	done := make(chan error, 1)
	go func() {
		done <- alice.SendJoke(context.Background())
	}()
	<-fetching

	alice.HandleClose()
	assert.Equal(t, []map[string]any{note("alice left lobby.")}, bobRec.messages(t))
	assert.False(t, room.Has(alice))

	close(release)
	require.NoError(t, <-done)
	assert.Zero(t, aliceRec.callCount())
}

func TestSessionOptions(t *testing.T) {
	room := newTestRegistry().Get("lobby")
	s, _ := newTestSession(room, WithID("fixed-id"))

	assert.Equal(t, "fixed-id", s.ID())
	assert.Same(t, room, s.Room())
	_, joined := s.Name()
	assert.False(t, joined)
}
