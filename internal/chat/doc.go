// Package chat implements the room and session model of the relay: a Registry
// of named Rooms, each holding a set of member Sessions, and the Session
// mediator that parses inbound frames and routes them to a Room or to a
// JokeSource.
//
// Nothing in this package knows about WebSockets. A Session only sees a
// SendFunc for its outbound frames; the transport calls HandleMessage for each
// inbound frame and HandleClose once the connection is gone.
package chat
