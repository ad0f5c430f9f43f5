// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var ErrInvalidOutput = errors.New("invalid output format")

func parseOutput(s string) (string, error) {
	switch format := strings.ToLower(s); format {
	case outputText, outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q (expected text, json or yaml)", ErrInvalidOutput, s)
	}
}

// printValue renders [v] for machine consumption. Text output is the
// progress stream itself, so nothing more is written.
func printValue(w io.Writer, format string, v interface{}) error {
	switch format {
	case outputJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case outputYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return nil
	}
}
