// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "process start",
			err:  &ProcessStartError{Command: "uvx", Err: errors.New("executable file not found")},
			want: `failed to start MCP server "uvx": executable file not found`,
		},
		{
			name: "handshake with cause",
			err:  &HandshakeError{State: StateInitializing, Reason: "initialize request failed", Err: io.EOF},
			want: "handshake failed (state initializing): initialize request failed: EOF",
		},
		{
			name: "handshake without cause",
			err:  &HandshakeError{State: StateClosed, Reason: "session closed"},
			want: "handshake failed (state closed): session closed",
		},
		{
			name: "protocol",
			err:  &ProtocolError{Reason: "response line is not valid JSON"},
			want: "protocol error: response line is not valid JSON",
		},
		{
			name: "broken pipe",
			err:  &BrokenPipeError{Op: "write", Err: syscall.EPIPE},
			want: fmt.Sprintf("MCP server pipe broken during write: %v", syscall.EPIPE),
		},
		{
			name: "invalid call",
			err:  &InvalidCallError{Reason: "empty tool call batch"},
			want: "invalid tool call: empty tool call batch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := syscall.EPIPE

	assert.ErrorIs(t, &ProcessStartError{Err: cause}, cause)
	assert.ErrorIs(t, &HandshakeError{Err: cause}, cause)
	assert.ErrorIs(t, &ProtocolError{Err: cause}, cause)
	assert.ErrorIs(t, &BrokenPipeError{Err: cause}, cause)
}

func TestIsPipeFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"EPIPE", syscall.EPIPE, true},
		{"closed pipe", io.ErrClosedPipe, true},
		{"EOF", io.EOF, true},
		{"unexpected EOF", io.ErrUnexpectedEOF, true},
		{"wrapped EPIPE", fmt.Errorf("write |1: %w", syscall.EPIPE), true},
		{"generic error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPipeFailure(tt.err))
		})
	}
}

func TestHandshakeStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", HandshakeState(42).String())
}
