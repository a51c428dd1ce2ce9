// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// validateArguments checks normalized arguments against a tool's discovered
// input schema. Validation is advisory: the server remains the authority on
// its own contract, so failures are logged by the dispatcher rather than
// blocking the call.
//
// Tools without a discovered schema validate trivially.
func validateArguments(tool ToolDescriptor, arguments map[string]any) error {
	if len(tool.InputSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(tool.InputSchema)
	documentLoader := gojsonschema.NewGoLoader(arguments)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation for %s: %w", tool.Name, err)
	}
	if result.Valid() {
		return nil
	}

	var issues []string
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return fmt.Errorf("arguments for %s do not match the declared schema: %s", tool.Name, strings.Join(issues, "; "))
}
