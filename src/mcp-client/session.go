// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"context"

	"github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/logger"
)

// Session ties a Supervisor, Client and Dispatcher together into one
// ready-to-use bridge session. A session is single-use: once closed (or once
// the pipe breaks), a fresh session must be opened; no automatic reconnect is
// attempted.
type Session struct {
	// Supervisor owns the child process.
	Supervisor *Supervisor
	// Client runs the wire protocol.
	Client *Client
	// Dispatcher is the public call surface.
	Dispatcher *Dispatcher
}

// OpenSession spawns the Cost Explorer MCP server, performs the handshake and
// tool discovery, and returns a dispatching session.
//
// On any failure the child process is terminated before the error is returned,
// so a failed open never leaks a process.
func OpenSession(ctx context.Context, cfg *Config, log logger.Logger) (*Session, error) {
	sup := NewSupervisor(cfg, log)
	if err := sup.Start(ctx); err != nil {
		return nil, err
	}

	client := NewClient(cfg, sup, log)
	if err := client.Initialize(ctx); err != nil {
		sup.Terminate()
		return nil, err
	}
	if _, err := client.ListTools(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Session{
		Supervisor: sup,
		Client:     client,
		Dispatcher: NewDispatcher(client, log),
	}, nil
}

// Close shuts the session down: the protocol client transitions to Closed and
// the child process is terminated. Close is idempotent.
func (s *Session) Close() error {
	return s.Client.Close()
}
