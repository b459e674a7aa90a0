package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Frame types on the wire.
const (
	TypeJoin  = "join"
	TypeChat  = "chat"
	TypeNote  = "note"
	TypeError = "error"
)

const (
	privatePrefix = "/priv"
	jokeText      = "/joke"
)

// Command is one parsed inbound frame. The set of implementations is closed:
// JoinCommand, ChatCommand, PrivateCommand and JokeCommand.
type Command interface {
	command()
}

// JoinCommand asks to join the session's room under Name.
type JoinCommand struct {
	Name string
}

// ChatCommand broadcasts Text to the room.
type ChatCommand struct {
	Text string
}

// PrivateCommand sends Message to the room member called Username.
type PrivateCommand struct {
	Username string
	Message  string
}

// JokeCommand asks the joke source for a joke for the sender alone.
type JokeCommand struct{}

func (JoinCommand) command()    {}
func (ChatCommand) command()    {}
func (PrivateCommand) command() {}
func (JokeCommand) command()    {}

type inboundFrame struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// ParseCommand decodes raw and classifies it. The checks run in a fixed order
// and the first match wins: a join type, a "/priv" text prefix, the "/joke"
// text, then a chat type. A "/joke" text therefore never reaches the room even
// when the frame says type "chat".
func ParseCommand(raw []byte) (Command, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch {
	case frame.Type == TypeJoin:
		return JoinCommand{Name: frame.Name}, nil
	case strings.HasPrefix(frame.Text, privatePrefix):
		parts := strings.Split(frame.Text, " ")
		return PrivateCommand{Username: token(parts, 1), Message: token(parts, 2)}, nil
	case frame.Text == jokeText:
		return JokeCommand{}, nil
	case frame.Type == TypeChat:
		return ChatCommand{Text: frame.Text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadMessageType, frame.Type)
	}
}

func token(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// NoteMessage is a system notice: joins, departures and jokes.
type NoteMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatMessage is a line broadcast to the whole room.
type ChatMessage struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// PrivateMessage is a line delivered to one member. It carries the body in
// "message" rather than "text"; existing clients read it from there.
type PrivateMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// ErrorMessage tells a sender that its last frame was rejected.
type ErrorMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewNote builds a note payload.
func NewNote(text string) NoteMessage {
	return NoteMessage{Type: TypeNote, Text: text}
}

// NewError builds an error payload.
func NewError(text string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Text: text}
}
