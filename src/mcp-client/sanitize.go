// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import "math"

// Sanitize recursively normalizes a decoded tool result so it can be safely
// re-serialized as JSON downstream. Any floating-point value that is NaN or
// infinite is replaced with nil; all other values pass through unchanged.
//
// Sanitize is a pure function. Tool results are always tree-shaped JSON
// (never graphs), so the walk terminates.
//
// Parameters:
//   - v: Decoded payload value (maps, slices, scalars)
//
// Returns:
//   - any: The same structure with every non-finite float replaced by nil
func Sanitize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Sanitize(item)
		}
		return out
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return val
	default:
		return v
	}
}
