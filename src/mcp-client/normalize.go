// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// invalidGroupByDimensions are tag-like names the upstream interpreter is known
// to emit as grouping dimensions. Cost Explorer rejects them; grouping falls
// back to SERVICE and the tag belongs in the filter expression instead.
var invalidGroupByDimensions = map[string]struct{}{
	"CostCenter":       {},
	"Environment":      {},
	"Project":          {},
	"Team":             {},
	"Department":       {},
	"USAGE_TYPE_GROUP": {},
}

// forecastMetricTable maps metric names to the UPPER_SNAKE_CASE encoding the
// forecast tool family expects.
var forecastMetricTable = map[string]string{
	"UnblendedCost":      "UNBLENDED_COST",
	"BlendedCost":        "BLENDED_COST",
	"AmortizedCost":      "AMORTIZED_COST",
	"NetAmortizedCost":   "NET_AMORTIZED_COST",
	"NetUnblendedCost":   "NET_UNBLENDED_COST",
	"UNBLENDED_COST":     "UNBLENDED_COST",
	"BLENDED_COST":       "BLENDED_COST",
	"AMORTIZED_COST":     "AMORTIZED_COST",
	"NET_AMORTIZED_COST": "NET_AMORTIZED_COST",
	"NET_UNBLENDED_COST": "NET_UNBLENDED_COST",
}

// usageMetricTable maps metric names to the PascalCase encoding the cost and
// usage tool family expects.
var usageMetricTable = map[string]string{
	"UNBLENDED_COST":     "UnblendedCost",
	"BLENDED_COST":       "BlendedCost",
	"AMORTIZED_COST":     "AmortizedCost",
	"NET_AMORTIZED_COST": "NetAmortizedCost",
	"NET_UNBLENDED_COST": "NetUnblendedCost",
	"USAGE_QUANTITY":     "UsageQuantity",
	"UnblendedCost":      "UnblendedCost",
	"BlendedCost":        "BlendedCost",
	"AmortizedCost":      "AmortizedCost",
	"NetAmortizedCost":   "NetAmortizedCost",
	"NetUnblendedCost":   "NetUnblendedCost",
	"UsageQuantity":      "UsageQuantity",
}

// isForecastTool reports whether a tool belongs to the forecast family, which
// uses the UPPER_SNAKE_CASE metric encoding.
func isForecastTool(toolName string) bool {
	return strings.Contains(strings.ToLower(toolName), "forecast")
}

// Normalizer deterministically repairs parameter shapes the upstream
// interpreter is known to produce incorrectly, so the Cost Explorer MCP server
// does not reject the call.
//
// The rules are applied as a fixed ordered sequence on every call. Each rule is
// an idempotent pure transform: applying the normalizer twice yields the same
// result as applying it once. The caller's parameter bag is never mutated; a
// new bag is returned.
type Normalizer struct {
	// now supplies the current time. Injected so date-sensitive rules
	// (forecast clamping, current-month exclusion) are testable.
	now func() time.Time
}

// NewNormalizer creates a Normalizer using the supplied clock.
// Pass nil to use time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize applies the full repair rule sequence to a parameter bag destined
// for the named tool.
//
// Parameters:
//   - toolName: The target tool, which selects the metric casing family
//   - params: Raw parameter bag (not mutated)
//
// Returns:
//   - map[string]any: A new, corrected parameter bag
//   - []string: Non-fatal warnings for substitutions that changed semantics
func (n *Normalizer) Normalize(toolName string, params map[string]any) (map[string]any, []string) {
	fixed, _ := deepCopyValue(params).(map[string]any)
	if fixed == nil {
		fixed = map[string]any{}
	}

	var warnings []string

	n.fixGroupByShape(fixed)
	n.fixGroupByDimension(fixed, &warnings)
	n.clampForecastStart(fixed)
	n.fixMetricCasing(toolName, fixed)
	n.fixCompositeMetric(toolName, fixed, &warnings)
	n.renameComparisonPeriods(fixed)
	n.alignComparisonMonths(fixed)
	n.excludeCurrentMonth(fixed)
	n.resolvePeriodCollision(fixed)
	n.rewriteTagDimensionFilter(fixed, &warnings)

	return fixed, warnings
}

// fixGroupByShape collapses a group_by sequence to a single string value.
// A tag object ({"Type":"TAG", ...}) anywhere in the sequence collapses it to
// "SERVICE" because Cost Explorer does not support tag-based grouping; tags
// may only appear in filter expressions. An empty sequence means no grouping.
func (n *Normalizer) fixGroupByShape(params map[string]any) {
	seq, ok := params["group_by"].([]any)
	if !ok {
		return
	}
	if len(seq) == 0 {
		params["group_by"] = nil
		return
	}
	for _, item := range seq {
		if m, ok := item.(map[string]any); ok {
			if t, _ := m["Type"].(string); t == "TAG" {
				params["group_by"] = "SERVICE"
				return
			}
		}
	}
	switch first := seq[0].(type) {
	case map[string]any:
		if key, ok := first["Key"].(string); ok {
			params["group_by"] = key
		}
	case string:
		params["group_by"] = first
	}
}

// fixGroupByDimension replaces known-invalid pseudo-dimension names with the
// literal dimension "SERVICE".
func (n *Normalizer) fixGroupByDimension(params map[string]any, warnings *[]string) {
	gb, ok := params["group_by"].(string)
	if !ok {
		return
	}
	if _, invalid := invalidGroupByDimensions[gb]; invalid {
		params["group_by"] = "SERVICE"
		*warnings = append(*warnings, fmt.Sprintf("invalid dimension %q not supported in group_by, converted to SERVICE grouping", gb))
	}
}

// clampForecastStart clamps a future start date to the current date. Forecast
// semantics require start <= today; the end date may remain in the future.
func (n *Normalizer) clampForecastStart(params map[string]any) {
	dateRange, ok := params["date_range"].(map[string]any)
	if !ok {
		return
	}
	start, ok := dateRange["start_date"].(string)
	if !ok {
		return
	}
	// ISO dates compare correctly as strings.
	if today := n.now().Format("2006-01-02"); start > today {
		dateRange["start_date"] = today
	}
}

// fixMetricCasing rewrites the metric field through the case table matching
// the target tool's family. Unrecognized values pass through unchanged.
func (n *Normalizer) fixMetricCasing(toolName string, params map[string]any) {
	metric, ok := params["metric"].(string)
	if !ok {
		return
	}
	table := usageMetricTable
	if isForecastTool(toolName) {
		table = forecastMetricTable
	}
	if mapped, ok := table[metric]; ok {
		params["metric"] = mapped
	}
}

// fixCompositeMetric substitutes the family default for the invalid composite
// metric "BOTH" and for textual composites naming two cost bases at once.
func (n *Normalizer) fixCompositeMetric(toolName string, params map[string]any, warnings *[]string) {
	metric, ok := params["metric"].(string)
	if !ok {
		return
	}

	if metric == "BOTH" {
		if isForecastTool(toolName) {
			params["metric"] = "UNBLENDED_COST"
		} else {
			params["metric"] = "AmortizedCost"
		}
		*warnings = append(*warnings, "'BOTH' metric not supported by the Cost Explorer API, using the family default instead")
		return
	}

	lower := strings.ToLower(metric)
	if strings.Contains(lower, "amortized") && strings.Contains(lower, "blended") {
		params["metric"] = "AmortizedCost"
		*warnings = append(*warnings, "multiple metrics requested in one value, using AmortizedCost; make separate calls for each metric")
	}
}

// renameComparisonPeriods renames the generic period field names the upstream
// interpreter sometimes emits to the names the comparison tool expects.
func (n *Normalizer) renameComparisonPeriods(params map[string]any) {
	current, hasCurrent := params["current_period"]
	previous, hasPrevious := params["previous_period"]
	if !hasCurrent || !hasPrevious {
		return
	}
	params["baseline_date_range"] = current
	params["comparison_date_range"] = previous
	delete(params, "current_period")
	delete(params, "previous_period")
}

// alignComparisonMonths truncates both dates of each comparison range to the
// first day of their months and forces the range to span exactly one calendar
// month (end = first day of the month after start).
func (n *Normalizer) alignComparisonMonths(params map[string]any) {
	for _, field := range []string{"baseline_date_range", "comparison_date_range"} {
		r, ok := params[field].(map[string]any)
		if !ok {
			continue
		}
		start, okStart := r["start_date"].(string)
		end, okEnd := r["end_date"].(string)
		if !okStart || !okEnd {
			continue
		}

		start = firstOfMonth(start)
		end = firstOfMonth(end)
		r["start_date"] = start
		r["end_date"] = end

		if year, month, ok := yearMonth(start); ok {
			ny, nm := nextMonth(year, month)
			r["end_date"] = fmtMonthStart(ny, nm)
		}
	}
}

// excludeCurrentMonth shifts a comparison range back by one month when its
// start date falls inside the current calendar month. The current month is
// incomplete and must not be compared.
func (n *Normalizer) excludeCurrentMonth(params map[string]any) {
	currentPrefix := n.now().Format("2006-01")

	for _, field := range []string{"baseline_date_range", "comparison_date_range"} {
		r, ok := params[field].(map[string]any)
		if !ok {
			continue
		}
		start, ok := r["start_date"].(string)
		if !ok || !strings.HasPrefix(start, currentPrefix) {
			continue
		}
		if year, month, ok := yearMonth(currentPrefix + "-01"); ok {
			py, pm := prevMonth(year, month)
			r["start_date"] = fmtMonthStart(py, pm)
			r["end_date"] = fmtMonthStart(year, month)
		}
	}
}

// resolvePeriodCollision shifts the comparison range back by one additional
// month when it is identical to the baseline range after alignment.
func (n *Normalizer) resolvePeriodCollision(params map[string]any) {
	baseline, okB := params["baseline_date_range"].(map[string]any)
	comparison, okC := params["comparison_date_range"].(map[string]any)
	if !okB || !okC {
		return
	}
	if baseline["start_date"] != comparison["start_date"] || baseline["end_date"] != comparison["end_date"] {
		return
	}
	start, ok := comparison["start_date"].(string)
	if !ok {
		return
	}
	if year, month, ok := yearMonth(start); ok {
		py, pm := prevMonth(year, month)
		comparison["start_date"] = fmtMonthStart(py, pm)
		comparison["end_date"] = fmtMonthStart(year, month)
	}
}

// rewriteTagDimensionFilter rewrites a dimension filter keyed "TAG" (whose
// value encodes key:value) as a proper tag filter. A value that cannot be
// split is dropped rather than sent as a malformed request.
func (n *Normalizer) rewriteTagDimensionFilter(params map[string]any, warnings *[]string) {
	filter, ok := params["filter_expression"].(map[string]any)
	if !ok {
		return
	}
	dims, ok := filter["Dimensions"].(map[string]any)
	if !ok {
		return
	}
	if key, _ := dims["Key"].(string); key != "TAG" {
		return
	}

	var raw string
	if values, ok := dims["Values"].([]any); ok && len(values) > 0 {
		raw, _ = values[0].(string)
	}

	if tagKey, tagValue, found := strings.Cut(raw, ":"); found {
		filter["Tags"] = map[string]any{
			"Key":          tagKey,
			"Values":       []any{tagValue},
			"MatchOptions": []any{"EQUALS"},
		}
		delete(filter, "Dimensions")
		return
	}

	// No key:value encoding to recover; drop the invalid filter.
	delete(filter, "Dimensions")
	*warnings = append(*warnings, fmt.Sprintf("dropped invalid TAG dimension filter %q", raw))
}

// deepCopyValue returns a structural copy of a decoded JSON value. Maps and
// slices are copied recursively; scalars are returned as-is.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

// firstOfMonth truncates an ISO date (YYYY-MM-DD) to the first day of its
// month. Strings too short to carry a month are returned unchanged.
func firstOfMonth(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7] + "-01"
}

// yearMonth extracts the year and month from an ISO date string.
func yearMonth(date string) (year, month int, ok bool) {
	if len(date) < 7 {
		return 0, 0, false
	}
	year, errY := strconv.Atoi(date[:4])
	month, errM := strconv.Atoi(date[5:7])
	if errY != nil || errM != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// nextMonth returns the calendar month after (year, month).
func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// prevMonth returns the calendar month before (year, month).
func prevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// fmtMonthStart formats the first day of (year, month) as an ISO date.
func fmtMonthStart(year, month int) string {
	return fmt.Sprintf("%04d-%02d-01", year, month)
}
