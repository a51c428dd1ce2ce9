// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import "strings"

// costAndUsageTool is the only tool eligible for multi-metric expansion; the
// Cost Explorer API returns a single cost basis per call.
const costAndUsageTool = "get_cost_and_usage"

// ExpandMetricCalls splits a single cost-and-usage call into one call per
// requested cost basis when the upstream request wants several metrics that
// the underlying tool cannot return in one invocation.
//
// Metric resolution prefers the structured RequestedMetrics field on the call;
// free-text detection over the original query is the fallback. Calls for other
// tools, or queries naming at most one cost basis, are returned unchanged as a
// single-element slice.
//
// Parameters:
//   - call: The resolved tool call (not mutated; expanded calls carry copies)
//   - query: The original natural-language request text
//
// Returns:
//   - []ToolCall: One call per requested metric, otherwise the original call
func ExpandMetricCalls(call ToolCall, query string) []ToolCall {
	if call.ToolName != costAndUsageTool {
		return []ToolCall{call}
	}

	metrics := call.RequestedMetrics
	if len(metrics) == 0 {
		metrics = detectQueryMetrics(query)
	}
	if len(metrics) < 2 {
		return []ToolCall{call}
	}

	expanded := make([]ToolCall, 0, len(metrics))
	for _, metric := range metrics {
		params, _ := deepCopyValue(call.Parameters).(map[string]any)
		if params == nil {
			params = map[string]any{}
		}
		next := ToolCall{ToolName: call.ToolName, Parameters: params}
		next.Parameters["metric"] = metric
		expanded = append(expanded, next)
	}
	return expanded
}

// detectQueryMetrics extracts the list of cost-basis metrics a free-text query
// asks for. It returns nil unless the query names at least two cost bases or
// explicitly asks for separate/both results.
func detectQueryMetrics(query string) []string {
	lower := strings.ToLower(query)

	// "unblended" contains "blended"; mask it before testing for the latter so
	// a query about unblended cost alone does not also request BlendedCost.
	masked := strings.ReplaceAll(lower, "unblended", "")

	hasAmortized := strings.Contains(lower, "amortized")
	hasBlended := strings.Contains(masked, "blended")
	hasUnblended := strings.Contains(lower, "unblended")

	wantsSplit := (hasAmortized && hasBlended) ||
		(hasAmortized && hasUnblended) ||
		(hasBlended && hasUnblended) ||
		(strings.Contains(lower, "separate") && (strings.Contains(lower, "metric") || strings.Contains(lower, "cost"))) ||
		(strings.Contains(lower, "both") && (strings.Contains(lower, "metric") || strings.Contains(lower, "cost")))
	if !wantsSplit {
		return nil
	}

	var metrics []string
	if hasAmortized {
		metrics = append(metrics, "AmortizedCost")
	}
	if hasBlended {
		metrics = append(metrics, "BlendedCost")
	}
	if hasUnblended {
		metrics = append(metrics, "UnblendedCost")
	}
	if len(metrics) == 0 {
		// "both"/"separate" without named bases; use the usual pair.
		metrics = []string{"AmortizedCost", "BlendedCost"}
	}
	return metrics
}
