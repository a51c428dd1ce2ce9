// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// ProcessStartError indicates the Cost Explorer MCP server child process could
// not be located or spawned. It is fatal to the session.
type ProcessStartError struct {
	// Command: The executable that failed to start
	Command string
	// Err: Underlying error from the operating system
	Err error
}

// Error implements the error interface.
func (e *ProcessStartError) Error() string {
	return fmt.Sprintf("failed to start MCP server %q: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProcessStartError) Unwrap() error { return e.Err }

// HandshakeError indicates the initialize exchange was rejected or an
// operation was attempted while the session is not Ready. It is fatal to the
// session; the caller must construct a fresh Supervisor/Client pair.
type HandshakeError struct {
	// State: Session state at the time of failure
	State HandshakeState
	// Reason: Human-readable failure description
	Reason string
	// Err: Underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *HandshakeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("handshake failed (state %s): %s: %v", e.State, e.Reason, e.Err)
	}
	return fmt.Sprintf("handshake failed (state %s): %s", e.State, e.Reason)
}

// Unwrap returns the underlying error.
func (e *HandshakeError) Unwrap() error { return e.Err }

// ProtocolError indicates a malformed or unparseable wire message, a
// correlation id mismatch, or an expired read deadline. The session remains
// usable unless the error was caused by a broken pipe or deadline expiry.
type ProtocolError struct {
	// Reason: Human-readable failure description
	Reason string
	// Err: Underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error { return e.Err }

// BrokenPipeError indicates an I/O failure mid-call. It transitions the
// session to Closed and is surfaced to the caller as a user-facing
// "connection lost, retry" message.
type BrokenPipeError struct {
	// Op: The operation during which the pipe broke ("write" or "read")
	Op string
	// Err: Underlying I/O error
	Err error
}

// Error implements the error interface.
func (e *BrokenPipeError) Error() string {
	return fmt.Sprintf("MCP server pipe broken during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *BrokenPipeError) Unwrap() error { return e.Err }

// InvalidCallError indicates the caller supplied invalid input, such as an
// empty batch or a call missing its tool name. No process interaction is
// attempted.
type InvalidCallError struct {
	// Reason: Human-readable description of the invalid input
	Reason string
}

// Error implements the error interface.
func (e *InvalidCallError) Error() string { return "invalid tool call: " + e.Reason }

// isPipeFailure reports whether err represents a broken pipe or closed stream,
// which is a terminal condition for the current session.
func isPipeFailure(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
