// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config holds the bridge configuration: client identity for the handshake,
// the child server command line and its environment policy, and session
// timeouts.
//
// The configuration can be loaded from a JSON or YAML file specified by the
// MCP_COST_CONFIG_FILE environment variable, with defaults applied for any
// missing values. Supported file extensions: .json, .yaml, .yml
type Config struct {
	// Client: Identity and protocol metadata sent during the initialize handshake
	Client struct {
		// Name: Client name reported in clientInfo
		Name string `json:"name" yaml:"name"`
		// Version: Client version reported in clientInfo
		Version string `json:"version" yaml:"version"`
		// ProtocolVersion: MCP protocol version string for the handshake
		ProtocolVersion string `json:"protocolVersion" yaml:"protocolVersion"`
	} `json:"client" yaml:"client"`

	// Server: Child process command line and environment policy
	Server struct {
		// Command: Executable that implements the Cost Explorer MCP server
		Command string `json:"command" yaml:"command"`
		// Args: Arguments passed to the executable
		Args []string `json:"args" yaml:"args"`
		// Region: Value forced into AWS_REGION in the child's environment
		Region string `json:"region" yaml:"region"`
		// LocalBinDir: Directory prepended to the child's PATH
		// (defaults to $HOME/.local/bin when empty)
		LocalBinDir string `json:"localBinDir" yaml:"localBinDir"`
		// StartupGraceSeconds: Delay after spawn before the handshake begins.
		// The initialize round-trip is the real readiness gate; this only
		// papers over servers that read stdin before their loop is up.
		StartupGraceSeconds int `json:"startupGraceSeconds" yaml:"startupGraceSeconds"`
	} `json:"server" yaml:"server"`

	// Timeouts: Session deadlines
	Timeouts struct {
		// ReadSeconds: Deadline for each blocking response read. Expiry closes
		// the session. Cost Explorer calls can be slow, keep this generous.
		ReadSeconds int `json:"readSeconds" yaml:"readSeconds"`
	} `json:"timeouts" yaml:"timeouts"`
}

// detectConfigFormat determines the configuration file format based on file extension.
// It supports .json, .yaml, and .yml extensions with case-insensitive matching.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// LoadConfig loads bridge configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml
//
// Returns:
//   - A pointer to the loaded Config struct with defaults applied
//   - An error if the configuration file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. MCP_COST_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults (if file exists and is valid)
//  4. Environment variables override config file values (AWS_REGION)
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set defaults
	config.Client.Name = "aws-cost-mcp-bridge"
	config.Client.Version = "1.0.0"
	config.Client.ProtocolVersion = "2024-11-05"
	config.Server.Command = "uvx"
	config.Server.Args = []string{"awslabs.cost-explorer-mcp-server@latest"}
	config.Server.Region = "us-east-1"
	config.Server.StartupGraceSeconds = 2
	config.Timeouts.ReadSeconds = 120

	// Check environment variable for config file path if not provided
	if configPath == "" {
		configPath = os.Getenv("MCP_COST_CONFIG_FILE")
	}

	// Try to load from file if path is provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Detect format and unmarshal accordingly
		format := detectConfigFormat(configPath)
		if err := unmarshalConfig(data, config, format); err != nil {
			return nil, err
		}

		// Validate and set defaults for invalid values
		if config.Client.ProtocolVersion == "" {
			config.Client.ProtocolVersion = "2024-11-05"
		}
		if config.Server.Command == "" {
			config.Server.Command = "uvx"
			config.Server.Args = []string{"awslabs.cost-explorer-mcp-server@latest"}
		}
		if config.Server.StartupGraceSeconds < 0 {
			config.Server.StartupGraceSeconds = 2
		}
		if config.Timeouts.ReadSeconds <= 0 {
			config.Timeouts.ReadSeconds = 120
		}
	}

	// Override region from environment if set
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.Server.Region = region
	}

	return config, nil
}
