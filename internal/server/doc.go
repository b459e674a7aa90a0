// Package server implements the HTTP and WebSocket transport for roomchat.
//
// The implementation is organized into specialized files for configuration,
// origin checks, the connection hub, per-connection clients, routing, and HTTP
// handlers. Room membership and message routing live in package chat; this
// package only moves frames between sockets and chat.Session values.
package server
