// Package id generates identifiers for pipeline runs.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// runAlphabet avoids '-' and '_' so run ids read cleanly in log lines.
const runAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// runIDLength keeps ids short enough to scan in console output.
const runIDLength = 12

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "run-k3v9x0q2m1ab").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(runAlphabet, runIDLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewRunID returns the identifier attached to every log line of one pipeline run.
func NewRunID() (string, error) {
	return Generate("run")
}
