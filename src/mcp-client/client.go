// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/internal/helper/gc"
	jsonrpcHelper "github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/internal/helper/jsonrpc"
	"github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/logger"
	"github.com/mark3labs/mcp-go/mcp"
)

// initializedNotification is the notification confirming the handshake;
// it carries no id and expects no response.
const initializedNotification = "notifications/initialized"

// lineResult is one framed line read from the server's stdout, or the read
// error that ended the stream.
type lineResult struct {
	line string
	err  error
}

// Client runs the [MCP] handshake and request/response correlation over the
// child process's standard input/output.
//
// The wire protocol is newline-delimited JSON-RPC 2.0: exactly one framed JSON
// object per line, UTF-8. I/O is line-synchronous with a single outstanding
// request; the client writes a request line and performs one blocking read of
// the next line as that request's response. Request ids are unique within a
// session and monotonically increasing. Concurrent callers are serialized onto
// the single channel; no second request is sent before the first response line
// has been fully read.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Client struct {
	cfg         *Config
	log         logger.Logger
	stdin       io.Writer
	stdout      io.Reader
	terminate   func() // transport owner teardown, may be nil
	readTimeout time.Duration

	// opMu serializes request/response cycles (FIFO, depth 1).
	opMu sync.Mutex

	// stateMu guards state, nextID and the discovered tool set.
	stateMu sync.RWMutex
	state   HandshakeState
	nextID  int64
	tools   []ToolDescriptor

	readerOnce sync.Once
	closeOnce  sync.Once
	lines      chan lineResult
	done       chan struct{}
}

// NewClient creates a protocol client over a started Supervisor's pipes.
// Closing the client terminates the supervised process.
func NewClient(cfg *Config, sup *Supervisor, log logger.Logger) *Client {
	c := NewClientWithPipes(cfg, sup.Stdin(), sup.Stdout(), log)
	c.terminate = sup.Terminate
	return c
}

// NewClientWithPipes creates a protocol client over arbitrary reader/writer
// pairs. This is the constructor used by tests and by embedders that manage
// the server process themselves.
func NewClientWithPipes(cfg *Config, stdin io.Writer, stdout io.Reader, log logger.Logger) *Client {
	return &Client{
		cfg:         cfg,
		log:         log,
		stdin:       stdin,
		stdout:      stdout,
		readTimeout: time.Duration(cfg.Timeouts.ReadSeconds) * time.Second,
		state:       StateUninitialized,
		nextID:      1,
		lines:       make(chan lineResult, 1),
		done:        make(chan struct{}),
	}
}

// State returns the current handshake state.
func (c *Client) State() HandshakeState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Tools returns the tool descriptors discovered by ListTools.
// The returned slice is read-only after discovery.
func (c *Client) Tools() []ToolDescriptor {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.tools
}

// Initialize performs the initialize/initialized handshake.
//
// It sends an initialize request carrying the protocol version, a tools
// capability declaration and the client identity, blocks for exactly one
// response line, and on success sends the initialized notification and
// transitions the session to Ready. A rejected initialize (response without a
// result field) aborts to Closed and returns a *HandshakeError.
func (c *Client) Initialize(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if state := c.State(); state != StateUninitialized {
		return &HandshakeError{State: state, Reason: "initialize called twice"}
	}
	c.setState(StateInitializing)
	c.readerOnce.Do(func() { go c.readLoop() })

	params := map[string]any{
		"protocolVersion": c.cfg.Client.ProtocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"clientInfo": map[string]any{
			"name":    c.cfg.Client.Name,
			"version": c.cfg.Client.Version,
		},
	}

	resp, err := c.roundTrip(ctx, string(mcp.MethodInitialize), params)
	if err != nil {
		c.setState(StateClosed)
		return &HandshakeError{State: StateInitializing, Reason: "initialize request failed", Err: err}
	}
	if _, ok := resp["result"]; !ok {
		c.setState(StateClosed)
		return &HandshakeError{State: StateInitializing, Reason: "initialize rejected by server"}
	}

	if err := c.writeMessage(map[string]any{
		"method": initializedNotification,
	}); err != nil {
		c.setState(StateClosed)
		return &HandshakeError{State: StateInitializing, Reason: "initialized notification failed", Err: err}
	}

	c.setState(StateReady)
	c.log.Printf("MCP session ready (protocol %s)", c.cfg.Client.ProtocolVersion)
	return nil
}

// ListTools requests the server's tool listing and stores the descriptors.
// The session must be Ready.
func (c *Client) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.requireReady(); err != nil {
		return nil, err
	}

	resp, err := c.roundTrip(ctx, string(mcp.MethodToolsList), nil)
	if err != nil {
		return nil, err
	}
	if errVal, ok := resp["error"]; ok {
		return nil, &ProtocolError{Reason: "tools/list failed: " + errorMessage(errVal)}
	}

	result, ok := resp["result"].(map[string]any)
	if !ok {
		return nil, &ProtocolError{Reason: "tools/list result is not an object"}
	}

	var tools []ToolDescriptor
	if err := jsonrpcHelper.UnmarshalFromMap(result["tools"], &tools); err != nil {
		return nil, &ProtocolError{Reason: "malformed tools/list result", Err: err}
	}

	c.stateMu.Lock()
	c.tools = tools
	c.stateMu.Unlock()

	c.log.Printf("loaded %d tools from MCP server", len(tools))
	return tools, nil
}

// CallTool invokes a named tool with the given arguments and returns the
// decoded result payload. The session must be Ready.
//
// The server answers either with result.content[0].text (a JSON-encoded string
// payload, which is parsed) or with a bare result object. A response carrying
// an error object is returned as an error with the server's message.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (any, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.requireReady(); err != nil {
		return nil, err
	}
	if arguments == nil {
		arguments = map[string]any{}
	}

	resp, err := c.roundTrip(ctx, string(mcp.MethodToolsCall), map[string]any{
		"name":      name,
		"arguments": arguments,
	})
	if err != nil {
		return nil, err
	}
	if errVal, ok := resp["error"]; ok {
		return nil, errors.New(errorMessage(errVal))
	}

	result := resp["result"]
	resultMap, ok := result.(map[string]any)
	if !ok {
		return result, nil
	}

	// Prefer the text content payload when present; it carries the actual
	// tool output as stringified JSON.
	if content, ok := resultMap["content"].([]any); ok && len(content) > 0 {
		if first, ok := content[0].(map[string]any); ok {
			if text, ok := first["text"].(string); ok {
				var payload any
				if err := json.Unmarshal([]byte(text), &payload); err != nil {
					return nil, &ProtocolError{Reason: "failed to parse MCP response payload", Err: err}
				}
				return payload, nil
			}
		}
	}
	return resultMap, nil
}

// Close transitions the session to Closed and terminates the transport owner
// (the supervised child process, when one is attached). Close is idempotent.
func (c *Client) Close() error {
	c.setState(StateClosed)
	c.closeOnce.Do(func() { close(c.done) })
	if c.terminate != nil {
		c.terminate()
	}
	return nil
}

// roundTrip writes one request line and blocks for the next response line,
// enforcing id correlation and the configured read deadline.
func (c *Client) roundTrip(ctx context.Context, method string, params any) (map[string]any, error) {
	id := c.allocID()

	req := map[string]any{
		"id":     id,
		"method": method,
	}
	if params != nil {
		req["params"] = params
	}

	if err := c.writeMessage(req); err != nil {
		return nil, err
	}

	line, err := c.readLine(ctx)
	if err != nil {
		return nil, err
	}

	var msg map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &msg); err != nil {
		// A garbled line fails this call but does not close the session.
		return nil, &ProtocolError{Reason: "response line is not valid JSON", Err: err}
	}
	msg = jsonrpcHelper.Map(msg)

	if respID, ok := asInt64(msg["id"]); !ok || respID != id {
		return nil, &ProtocolError{Reason: fmt.Sprintf("response id %v does not match request id %d", msg["id"], id)}
	}

	_, hasResult := msg["result"]
	_, hasError := msg["error"]
	if !hasResult && !hasError {
		return nil, &ProtocolError{Reason: "response carries neither result nor error"}
	}
	return msg, nil
}

// writeMessage frames a message as one JSON line and writes it to the child's
// stdin. Outbound messages are canonicalized (lowercase keys, default jsonrpc
// version injected) before framing. A failed write closes the session.
func (c *Client) writeMessage(msg map[string]any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return &ProtocolError{Reason: "failed to encode request", Err: err}
	}
	data, err := jsonrpcHelper.Marshal(raw)
	if err != nil {
		return &ProtocolError{Reason: "failed to encode request", Err: err}
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if _, err := buf.WriteString(string(data)); err != nil {
		return &ProtocolError{Reason: "failed to frame request", Err: err}
	}
	if err := buf.WriteByte('\n'); err != nil {
		return &ProtocolError{Reason: "failed to frame request", Err: err}
	}

	if _, err := c.stdin.Write(buf.Bytes()); err != nil {
		c.setState(StateClosed)
		return &BrokenPipeError{Op: "write", Err: err}
	}
	return nil
}

// readLine blocks for the next line from the server, the read deadline, or
// context cancellation. Deadline expiry and cancellation close the session:
// the stream can no longer be correlated once a response is abandoned.
func (c *Client) readLine(ctx context.Context) (string, error) {
	timer := time.NewTimer(c.readTimeout)
	defer timer.Stop()

	select {
	case res := <-c.lines:
		if res.err != nil {
			c.setState(StateClosed)
			if isPipeFailure(res.err) {
				return "", &BrokenPipeError{Op: "read", Err: res.err}
			}
			return "", &ProtocolError{Reason: "read failed", Err: res.err}
		}
		return res.line, nil
	case <-timer.C:
		c.setState(StateClosed)
		return "", &ProtocolError{Reason: fmt.Sprintf("read deadline of %s exceeded", c.readTimeout)}
	case <-ctx.Done():
		c.setState(StateClosed)
		return "", &ProtocolError{Reason: "read cancelled", Err: ctx.Err()}
	}
}

// readLoop feeds framed lines from the server's stdout into the lines channel
// until the stream ends or the client is closed.
func (c *Client) readLoop() {
	reader := bufio.NewReader(c.stdout)
	for {
		line, err := reader.ReadString('\n')
		select {
		case c.lines <- lineResult{line: line, err: err}:
		case <-c.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// allocID returns the next request id. Ids are monotonically increasing and
// unique within the session so every invocation remains distinguishable.
func (c *Client) allocID() int64 {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	id := c.nextID
	c.nextID++
	return id
}

// requireReady fails unless the session state is Ready.
func (c *Client) requireReady() error {
	switch state := c.State(); state {
	case StateReady:
		return nil
	case StateClosed:
		return &HandshakeError{State: state, Reason: "session closed"}
	default:
		return &HandshakeError{State: state, Reason: "session not ready"}
	}
}

// setState advances the handshake state. The state machine only moves forward;
// a Closed session never reopens.
func (c *Client) setState(next HandshakeState) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = next
}

// asInt64 converts a decoded JSON-RPC id to int64 for correlation checks.
func asInt64(v any) (int64, bool) {
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case float64:
		if id == float64(int64(id)) {
			return int64(id), true
		}
	}
	return 0, false
}

// errorMessage extracts a human-readable message from a JSON-RPC error value.
func errorMessage(v any) string {
	if m, ok := v.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprint(v)
}
