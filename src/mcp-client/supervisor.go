// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/logger"
)

// Supervisor owns the lifecycle of the Cost Explorer [MCP] server child
// process: deterministic environment construction, spawn with attached stdio
// pipes, and best-effort termination.
//
// Exactly one child process is spawned per Supervisor instance; restarting
// requires a fresh Supervisor.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Supervisor struct {
	cfg *Config
	log logger.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	started  bool
	termOnce sync.Once
}

// NewSupervisor creates a Supervisor for the server described by cfg.
func NewSupervisor(cfg *Config, log logger.Logger) *Supervisor {
	return &Supervisor{cfg: cfg, log: log}
}

// Start spawns the child process with stdin, stdout, and stderr pipes attached
// and then waits the configured startup grace period. The grace wait is a
// crude readiness delay, not a readiness probe; the initialize round-trip is
// the real gate (see Client.Initialize).
//
// Returns a *ProcessStartError if the executable cannot be located or spawned,
// or the context error if cancelled during the grace wait.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return &ProcessStartError{Command: s.cfg.Server.Command, Err: fmt.Errorf("supervisor already started")}
	}

	cmd := exec.Command(s.cfg.Server.Command, s.cfg.Server.Args...)
	cmd.Env = s.buildEnv(os.Environ())

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &ProcessStartError{Command: s.cfg.Server.Command, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ProcessStartError{Command: s.cfg.Server.Command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &ProcessStartError{Command: s.cfg.Server.Command, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &ProcessStartError{Command: s.cfg.Server.Command, Err: err}
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	s.stderr = stderr
	s.started = true

	s.log.Printf("started MCP server %s (pid %d)", s.cfg.Server.Command, cmd.Process.Pid)

	if grace := s.cfg.Server.StartupGraceSeconds; grace > 0 {
		select {
		case <-time.After(time.Duration(grace) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// buildEnv constructs the child environment from the supplied parent
// environment: any AWS_PROFILE override is stripped, AWS_REGION is forced to
// the configured default, and the local binary directory is prepended to PATH.
func (s *Supervisor) buildEnv(environ []string) []string {
	localBin := s.cfg.Server.LocalBinDir
	if localBin == "" {
		localBin = filepath.Join(os.Getenv("HOME"), ".local", "bin")
	}

	var (
		env  []string
		path string
	)
	for _, kv := range environ {
		key, value, _ := strings.Cut(kv, "=")
		switch {
		case strings.HasPrefix(key, "AWS_PROFILE"):
			// Profile overrides would redirect the server at a different account.
			continue
		case key == "AWS_REGION":
			continue
		case key == "PATH":
			path = value
			continue
		}
		env = append(env, kv)
	}

	env = append(env, "PATH="+localBin+string(os.PathListSeparator)+path)
	env = append(env, "AWS_REGION="+s.cfg.Server.Region)
	return env
}

// Stdin returns the child's standard input pipe.
func (s *Supervisor) Stdin() io.WriteCloser { return s.stdin }

// Stdout returns the child's standard output pipe.
func (s *Supervisor) Stdout() io.ReadCloser { return s.stdout }

// Stderr returns the child's standard error pipe.
func (s *Supervisor) Stderr() io.ReadCloser { return s.stderr }

// Terminate kills the child process, best effort. It is idempotent and safe to
// call whether or not Start succeeded.
func (s *Supervisor) Terminate() {
	s.termOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.started {
			return
		}
		if s.stdin != nil {
			_ = s.stdin.Close()
		}
		if s.cmd != nil && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
			// Reap the child so it does not linger as a zombie.
			_ = s.cmd.Wait()
		}
		s.log.Printf("terminated MCP server %s", s.cfg.Server.Command)
	})
}
