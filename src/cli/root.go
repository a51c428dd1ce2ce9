// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/logger"
	mcpclient "github.com/H0llyW00dzZ/aws-cost-mcp-bridge/src/mcp-client"
)

var (
	configPath string
	paramsJSON string
	queryText  string
)

// OperationPerformed indicates whether a subcommand actually ran (as opposed
// to help or version output).
var OperationPerformed bool

// OperationPerformedSuccessfully indicates whether the subcommand that ran
// completed without error.
var OperationPerformedSuccessfully bool

// Execute runs the root command with the given context, version, and logger.
// It returns the error from command execution, if any.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName(),
		Short:         "AWS Cost Explorer MCP bridge",
		Long:          "Spawns the AWS Cost Explorer MCP server and bridges tool invocations to it\nover newline-delimited JSON-RPC, repairing malformed parameters on the way in\nand sanitizing results on the way out.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a JSON or YAML config file")

	rootCmd.AddCommand(newListToolsCmd(log))
	rootCmd.AddCommand(newCallCmd(log))

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		log.Printf("Error: %v", err)
	}
	return err
}

// newListToolsCmd builds the "list-tools" subcommand: spawn the server,
// perform the handshake, and render the discovered tool catalog.
func newListToolsCmd(log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list-tools",
		Short: "List the tools exposed by the Cost Explorer MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			session, err := openSession(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer session.Close()

			log.Println(renderToolTable(session.Client.Tools()))
			OperationPerformedSuccessfully = true
			return nil
		},
	}
}

// newCallCmd builds the "call" subcommand: invoke a named tool with JSON
// parameters through the normalization and dispatch pipeline.
func newCallCmd(log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call TOOL_NAME",
		Short: "Invoke a tool on the Cost Explorer MCP server",
		Example: fmt.Sprintf(`  %s call get_today_date
  %s call get_cost_and_usage --params '{"group_by":"SERVICE"}'
  %s call get_cost_and_usage --query "compare amortized and blended costs"`,
			posix.GetExecutableName(), posix.GetExecutableName(), posix.GetExecutableName()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			call := mcpclient.ToolCall{ToolName: args[0]}
			if paramsJSON != "" {
				if err := json.Unmarshal([]byte(paramsJSON), &call.Parameters); err != nil {
					return fmt.Errorf("invalid --params JSON: %w", err)
				}
			}

			session, err := openSession(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer session.Close()

			outcomes, err := session.Dispatcher.InvokeQuery(cmd.Context(), call, queryText)
			if err != nil {
				return err
			}

			for _, outcome := range outcomes {
				rendered, err := json.MarshalIndent(outcome.Result, "", "  ")
				if err != nil {
					return fmt.Errorf("rendering result for %s: %w", outcome.ToolCall.ToolName, err)
				}
				log.Printf("%s (metric call %d of %d):\n%s",
					outcome.ToolCall.ToolName, outcome.Index+1, len(outcomes), rendered)
			}
			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&paramsJSON, "params", "p", "", "tool parameters as a JSON object")
	cmd.Flags().StringVarP(&queryText, "query", "q", "", "original request text, used to split multi-metric cost queries")
	return cmd
}

// openSession loads the configuration and opens a bridge session against a
// freshly spawned Cost Explorer MCP server.
func openSession(ctx context.Context, log logger.Logger) (*mcpclient.Session, error) {
	cfg, err := mcpclient.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return mcpclient.OpenSession(ctx, cfg, log)
}

// renderToolTable renders the discovered tool descriptors as a markdown table.
func renderToolTable(tools []mcpclient.ToolDescriptor) string {
	if len(tools) == 0 {
		return "No tools discovered"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Tool", "Description"})

	var rows [][]string
	for i, tool := range tools {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			tool.Name,
			firstLine(tool.Description),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// firstLine truncates a tool description to its first line for table display.
func firstLine(s string) string {
	if line, _, found := strings.Cut(s, "\n"); found {
		return line
	}
	return s
}
