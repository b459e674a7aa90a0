package chat

import "errors"

var (
	// ErrMalformedPayload reports a frame that is not a valid JSON object.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrBadMessageType reports a frame whose shape matches no known command.
	ErrBadMessageType = errors.New("bad message type")
	// ErrRecipientNotFound reports a private message to a name absent from the room.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrJokeUnavailable wraps a failure of the joke source.
	ErrJokeUnavailable = errors.New("joke unavailable")
	// ErrNotJoined reports a room action attempted before the join message.
	ErrNotJoined = errors.New("session has not joined")
	// ErrAlreadyJoined reports a second join message on the same session.
	ErrAlreadyJoined = errors.New("session already joined")
	// ErrSessionClosed reports a command that arrived after the connection closed.
	ErrSessionClosed = errors.New("session closed")
)
