// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, room statistics, and the built-in test page.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/log"
)

// WebSocketHandler upgrades the request, binds the connection to the room
// named in the path and hands the new client to the hub, which starts its
// pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	roomName := mux.Vars(r)["room"]

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str(log.FieldRoom, roomName).Msg("WebSocket upgrade failed")
		return
	}

	id := uuid.NewString()
	connLogger := s.logger.With().Str(log.FieldClientAddr, r.RemoteAddr).Logger()
	logger := connLogger.With().
		Str(log.FieldSessionID, id).
		Str(log.FieldRoom, roomName).
		Logger()

	client := NewClient(conn, s.hub, id, r.RemoteAddr, s.cfg.SendBuffer, s.cfg.MaxMessageSize, logger)
	client.session = chat.NewSession(
		s.rooms.Get(roomName),
		client.Send,
		chat.WithID(id),
		chat.WithJokeSource(s.jokes),
		chat.WithJokeTimeout(s.cfg.JokeTimeout),
		chat.WithLogger(connLogger),
	)

	if !s.hub.Register(client) {
		logger.Info().Msg("rejecting connection during shutdown")
		_ = conn.Close()
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "roomchat server is running!")
}

type statsResponse struct {
	Rooms       int `json:"rooms"`
	Members     int `json:"members"`
	Connections int `json:"connections"`
}

// StatsHandler reports room, member and connection counts as JSON.
func (s *Server) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	rooms, members := s.rooms.Stats()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statsResponse{
		Rooms:       rooms,
		Members:     members,
		Connections: s.hub.Count(),
	}); err != nil {
		s.logger.Warn().Err(err).Msg("error writing stats response")
	}
}

// TestPageHandler serves an HTML page for trying the chat protocol from a
// browser: pick a room and a name, then chat, "/priv <user> <msg>" or "/joke".
func (s *Server) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPageHTML); err != nil {
		s.logger.Warn().Err(err).Msg("error writing HTML response")
	}
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>roomchat</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        #messageInput { width: 300px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .note { color: gray; font-style: italic; }
        .private { color: purple; }
        .error { color: #721c24; }
    </style>
</head>
<body>
    <h1>roomchat</h1>

    <div>
        <input type="text" id="roomInput" placeholder="room" value="lobby">
        <input type="text" id="nameInput" placeholder="your name">
        <button id="connectButton" onclick="toggleConnection()">Join</button>
    </div>

    <div id="messages"></div>

    <div>
        <input type="text" id="messageInput" placeholder="Say something, /priv user msg, or /joke" disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const connectButton = document.getElementById('connectButton');

        function addLine(text, cls) {
            const line = document.createElement('div');
            line.className = cls || '';
            line.textContent = text;
            messagesDiv.appendChild(line);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function setConnected(connected) {
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
            connectButton.textContent = connected ? 'Leave' : 'Join';
        }

        function connect() {
            const room = encodeURIComponent(document.getElementById('roomInput').value || 'lobby');
            const name = document.getElementById('nameInput').value || 'anonymous';
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/chat/' + room);

            ws.onopen = function() {
                ws.send(JSON.stringify({type: 'join', name: name}));
                setConnected(true);
            };

            ws.onmessage = function(event) {
                const msg = JSON.parse(event.data);
                if (msg.type === 'note') {
                    addLine(msg.text, 'note');
                } else if (msg.type === 'error') {
                    addLine('error: ' + msg.text, 'error');
                } else if (msg.message !== undefined) {
                    addLine('(private) ' + msg.name + ': ' + msg.message, 'private');
                } else {
                    addLine(msg.name + ': ' + msg.text);
                }
            };

            ws.onclose = function() {
                addLine('Connection closed', 'note');
                setConnected(false);
                ws = null;
            };
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.close();
            } else {
                connect();
            }
        }

        function sendMessage() {
            const text = messageInput.value.trim();
            if (text && ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({type: 'chat', text: text}));
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
