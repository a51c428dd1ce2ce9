// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

// HandshakeState represents the session state of a protocol client.
//
// The state only advances forward: Uninitialized → Initializing → Ready, and
// Ready → Closed on termination or unrecoverable I/O failure. No tool call or
// listing request is sent unless the state is Ready.
type HandshakeState int

const (
	// StateUninitialized is the state before Initialize has been called.
	StateUninitialized HandshakeState = iota
	// StateInitializing is the state while the initialize round-trip is in flight.
	StateInitializing
	// StateReady is the state after the initialized notification has been sent;
	// tool discovery and invocation are permitted.
	StateReady
	// StateClosed is the terminal state. All operations fail until a fresh
	// Supervisor/Client pair is constructed.
	StateClosed
)

// String returns a human-readable name for the handshake state.
func (s HandshakeState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
