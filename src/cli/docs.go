// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the AWS Cost Explorer MCP bridge.
// It implements a Cobra-based CLI with two subcommands: "list-tools" renders the
// tool catalog discovered from the spawned Cost Explorer MCP server as a markdown
// table, and "call" invokes a named tool with JSON parameters through the full
// normalization and dispatch pipeline. The package handles configuration loading,
// context cancellation, and integrates with the logger package for output.
package cli
