// Package testhelpers provides common utilities and helper functions for testing the roomchat server.
//
// It provides functions for dialing rooms, exchanging protocol frames, and asserting response
// properties to reduce code duplication in test files.
package testhelpers

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// TestOrigin is the Origin header sent by ConnectWebSocket; test servers must allow it.
const TestOrigin = "http://localhost:8080"

// DefaultTimeout bounds each ReceiveJSON call.
const DefaultTimeout = 2 * time.Second

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// RoomURL converts an httptest server URL into the WebSocket URL of a room.
func RoomURL(serverURL, room string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/chat/" + room
}

// ConnectWebSocketWithOrigin dials url sending the given Origin header.
func ConnectWebSocketWithOrigin(url, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", origin)

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, resp, err
}

// ConnectWebSocket creates a WebSocket connection to the specified URL.
func ConnectWebSocket(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := ConnectWebSocketWithOrigin(url, TestOrigin)
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", url, err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// SendJSON writes one protocol frame.
func SendJSON(t *testing.T, conn *websocket.Conn, frame any) {
	t.Helper()
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("Failed to send frame: %v", err)
	}
}

// Join sends a join frame for name.
func Join(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()
	SendJSON(t, conn, map[string]string{"type": "join", "name": name})
}

// Chat sends a chat frame carrying text.
func Chat(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	SendJSON(t, conn, map[string]string{"type": "chat", "text": text})
}

// ReceiveJSON reads the next frame as a JSON object, failing the test after
// DefaultTimeout.
func ReceiveJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(DefaultTimeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	var message map[string]any
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to receive frame: %v", err)
	}
	return message
}

// ExpectClosed waits for the server to end the connection.
func ExpectClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(DefaultTimeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				t.Fatalf("Connection was not closed: %v", err)
			}
			return
		}
	}
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
