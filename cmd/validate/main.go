package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glitchtale/engine/pkg/save"
)

// validate checks exported save files before they are shipped as
// fixtures or handed to support. It runs the same decode-and-migrate
// path the engine uses on import, so a file that passes here will load.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <save.json> [more saves...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := 0
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", filename, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", filename)
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed validation\n", failed, len(os.Args)-1)
		os.Exit(1)
	}
}

func validateFile(filename string) error {
	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return fmt.Errorf("save file must have .json extension")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Decode rewrites the version during migration, so read the
	// original off the raw bytes for reporting.
	var probe struct {
		Version string `json:"version"`
	}
	_ = json.Unmarshal(data, &probe)

	if _, err := save.Decode(data); err != nil {
		return err
	}

	if probe.Version != save.Version {
		from := probe.Version
		if from == "" {
			from = "unversioned"
		}
		fmt.Printf("     %s: %s migrated to %s\n", filename, from, save.Version)
	}
	return nil
}
