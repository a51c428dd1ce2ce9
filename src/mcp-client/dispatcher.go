// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"context"
	"errors"
	"time"

	"github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/logger"
)

// brokenPipeMessage is the user-facing message for a lost server connection.
const brokenPipeMessage = "MCP server connection lost. Please try again."

// ToolCaller is the protocol surface the Dispatcher needs: tool invocation
// plus access to the discovered descriptors. *Client satisfies it.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (any, error)
	Tools() []ToolDescriptor
}

// Dispatcher is the public-facing orchestrator. It accepts one or more tool
// calls, normalizes parameters, invokes them sequentially via the protocol
// client, sanitizes results, and aggregates outcomes with per-call failure
// isolation.
//
// Nothing the dispatcher does is allowed to terminate the calling process;
// every failure is converted into a ResultEnvelope.
type Dispatcher struct {
	caller ToolCaller
	norm   *Normalizer
	log    logger.Logger
}

// NewDispatcher creates a Dispatcher over the given protocol surface.
// The normalizer clock defaults to time.Now; tests inject their own via
// NewDispatcherWithClock.
func NewDispatcher(caller ToolCaller, log logger.Logger) *Dispatcher {
	return NewDispatcherWithClock(caller, log, time.Now)
}

// NewDispatcherWithClock creates a Dispatcher with an explicit clock for the
// date-sensitive normalization rules.
func NewDispatcherWithClock(caller ToolCaller, log logger.Logger, now func() time.Time) *Dispatcher {
	return &Dispatcher{
		caller: caller,
		norm:   NewNormalizer(now),
		log:    log,
	}
}

// Invoke executes an ordered batch of tool calls strictly sequentially and
// returns one outcome per call, in the caller-specified order.
//
// Each call's success or failure is isolated: a failure produces an error
// envelope for that index while subsequent calls still execute. An empty
// batch is invalid input and returns an *InvalidCallError.
func (d *Dispatcher) Invoke(ctx context.Context, calls []ToolCall) ([]CallOutcome, error) {
	if len(calls) == 0 {
		return nil, &InvalidCallError{Reason: "empty tool call batch"}
	}

	outcomes := make([]CallOutcome, 0, len(calls))
	for i, call := range calls {
		outcomes = append(outcomes, CallOutcome{
			Index:    i,
			ToolCall: call,
			Result:   d.InvokeOne(ctx, call),
		})
	}
	return outcomes, nil
}

// InvokeOne executes a single tool call through the full pipeline
// (normalize, advisory schema check, protocol call, sanitize) and converts
// any failure into an error envelope rather than propagating it.
func (d *Dispatcher) InvokeOne(ctx context.Context, call ToolCall) ResultEnvelope {
	if call.ToolName == "" {
		return envelopeForError(&InvalidCallError{Reason: "missing tool_name"})
	}

	params, warnings := d.norm.Normalize(call.ToolName, call.Parameters)
	for _, w := range warnings {
		d.log.Printf("normalization warning for %s: %s", call.ToolName, w)
	}

	if tool, ok := d.lookupTool(call.ToolName); ok {
		if err := validateArguments(tool, params); err != nil {
			// Advisory only; the server is the authority on its contract.
			d.log.Printf("schema warning: %v", err)
		}
	}

	result, err := d.caller.CallTool(ctx, call.ToolName, params)
	if err != nil {
		d.log.Printf("tool call %s failed: %v", call.ToolName, err)
		return envelopeForError(err)
	}

	return ResultEnvelope{Success: true, Data: Sanitize(result)}
}

// InvokeQuery applies the multi-metric splitting policy to a single resolved
// call before dispatching: when the original request names several cost bases
// and the target is the general cost-and-usage tool, one call per metric is
// issued and the outcomes are returned as a batch.
func (d *Dispatcher) InvokeQuery(ctx context.Context, call ToolCall, query string) ([]CallOutcome, error) {
	return d.Invoke(ctx, ExpandMetricCalls(call, query))
}

// lookupTool finds a discovered descriptor by name.
func (d *Dispatcher) lookupTool(name string) (ToolDescriptor, bool) {
	for _, tool := range d.caller.Tools() {
		if tool.Name == name {
			return tool, true
		}
	}
	return ToolDescriptor{}, false
}

// envelopeForError converts a failure into the uniform envelope shape,
// substituting the user-facing retry message for lost connections.
func envelopeForError(err error) ResultEnvelope {
	var pipeErr *BrokenPipeError
	if errors.As(err, &pipeErr) {
		return ResultEnvelope{Success: false, Error: brokenPipeMessage}
	}
	return ResultEnvelope{Success: false, Error: err.Error()}
}
