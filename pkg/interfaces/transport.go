package interfaces

import (
	"context"
	"encoding/json"

	"codelab/pkg/types"
)

// Transport is one duplex socket session owned by exactly one workspace
// controller. A session is single-use: open once, close once; a reconnect
// or a new teacher-session reference means a new Transport instance.
type Transport interface {
	// Open generates a fresh session identifier, derives the session mode
	// from teacherSessionRef presence, and establishes the connection.
	// In live mode the join announcement is sent before any other traffic.
	Open(ctx context.Context, lessonID, authToken, teacherSessionRef string) error

	// Send serializes {type, payload} using the session's fixed mode
	// vocabulary and transmits. Returns ErrNotConnected when the socket is
	// not open; never blocks indefinitely.
	Send(kind types.MessageKind, payload interface{}) error

	// Handle registers an inbound handler for a message kind. Registration
	// is safe at any time; frames arriving before any handler is registered
	// are dropped. Inbound frames are dispatched in arrival order and
	// unrecognized frame types are ignored.
	Handle(kind types.MessageKind, fn func(payload json.RawMessage))

	// Descriptor returns the session identity. Mode is invariant for the
	// session's lifetime.
	Descriptor() types.SessionDescriptor

	// Connected reports whether the socket is currently open.
	Connected() bool

	// Close releases the connection. Idempotent.
	Close() error
}
