// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpclient provides the [MCP] client for the AWS Cost Explorer tool server.
// It supervises the Cost Explorer [MCP] server child process, performs the
// initialize/initialized handshake over newline-delimited JSON-RPC on stdio,
// discovers and invokes tools, repairs malformed parameter bags produced by an
// upstream natural-language interpreter, and sanitizes tool results for safe
// JSON re-serialization.
//
// The package is organized around five components:
//   - Supervisor: child process lifecycle and deterministic environment construction
//   - Client: handshake state machine and request/response correlation
//   - Normalizer: ordered, idempotent parameter repair rules
//   - Sanitize: recursive removal of non-finite numeric values from results
//   - Dispatcher: multi-call orchestration with per-call failure isolation
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpclient
