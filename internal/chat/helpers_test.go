package chat

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errPipe = errors.New("broken pipe")

// recorder stands in for a client connection's send capability.
type recorder struct {
	mu     sync.Mutex
	calls  int
	frames [][]byte
	err    error
}

func (r *recorder) send(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, data)
	return nil
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *recorder) messages(t *testing.T) []map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]map[string]any, 0, len(r.frames))
	for _, frame := range r.frames {
		var msg map[string]any
		require.NoError(t, json.Unmarshal(frame, &msg))
		out = append(out, msg)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = 0
	r.frames = nil
}

func newTestRegistry() *Registry {
	if os.Getenv("CHAT_TEST_LOG") != "" {
		return NewRegistry(zerolog.New(os.Stderr))
	}
	return NewRegistry(zerolog.Nop())
}

func newTestSession(room *Room, opts ...SessionOption) (*Session, *recorder) {
	rec := &recorder{}
	return NewSession(room, rec.send, opts...), rec
}

func note(text string) map[string]any {
	return map[string]any{"type": "note", "text": text}
}
