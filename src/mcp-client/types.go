// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

// ToolDescriptor describes a tool exposed by the Cost Explorer [MCP] server.
// Descriptors are discovered once per session via the tools/list request and
// are immutable afterwards.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ToolDescriptor struct {
	// Name: Tool name as declared by the server (e.g., "get_cost_and_usage")
	Name string `json:"name"`
	// Description: Human-readable tool description
	Description string `json:"description"`
	// InputSchema: JSON Schema for the tool's arguments, used for advisory validation
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// ToolCall is a single (tool name, parameter bag) pair produced by the upstream
// interpreter. The parameter bag is treated as opaque and possibly malformed;
// the dispatcher never mutates it in place (normalization returns a new bag).
type ToolCall struct {
	// ToolName: Name of the tool to invoke
	ToolName string `json:"tool_name"`
	// Parameters: Raw parameter bag as produced upstream
	Parameters map[string]any `json:"parameters"`
	// RequestedMetrics: Optional structured list of cost metrics the upstream
	// interpreter resolved from the query. When present, it takes precedence
	// over free-text metric detection for multi-metric splitting.
	RequestedMetrics []string `json:"requested_metrics,omitempty"`
}

// ResultEnvelope is the uniform result shape returned to the external
// collaborator regardless of how many underlying tool calls were made.
type ResultEnvelope struct {
	// Success: Whether the call completed without error
	Success bool `json:"success"`
	// Data: Sanitized tool result payload (nil on failure)
	Data any `json:"data"`
	// Error: Human-readable failure description (empty on success)
	Error string `json:"error,omitempty"`
}

// CallOutcome pairs one entry of a multi-call batch with its result envelope.
// Outcomes are returned in the caller-specified order and Index always equals
// the entry's position in the input batch.
type CallOutcome struct {
	// Index: Position of this call in the input batch
	Index int `json:"index"`
	// ToolCall: The call as submitted (pre-normalization)
	ToolCall ToolCall `json:"tool_call"`
	// Result: Envelope holding the sanitized payload or the per-call error
	Result ResultEnvelope `json:"result"`
}
