package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter renders command results.
type Formatter interface {
	Format(data any) (string, error)
}

// NewFormatter returns a Formatter for "json" (default) or "yaml".
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return JSONFormatter{}, nil
	case "yaml", "yml":
		return YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// JSONFormatter prints indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Format(data any) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// YAMLFormatter prints YAML using the JSON field names.
type YAMLFormatter struct{}

func (YAMLFormatter) Format(data any) (string, error) {
	// Go through JSON first so struct tags and documents render with wire names.
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return "", err
	}
	b, err := yaml.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
