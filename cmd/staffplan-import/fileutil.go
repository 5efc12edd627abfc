package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func ensureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return withCode(exitUsage, fmt.Errorf("--output is required"))
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return withCode(exitDB, fmt.Errorf("mkdir %s: %w", path, err))
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return withCode(exitDB, fmt.Errorf("mkdir %s: %w", dir, err))
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return withCode(exitDB, fmt.Errorf("json marshal: %w", err))
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return withCode(exitDB, fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

// writeManifest stores manifest under outputDir and returns its path.
func writeManifest(outputDir string, manifest *importManifestV1) (string, error) {
	if err := ensureDir(outputDir); err != nil {
		return "", err
	}
	ts := manifest.FinishedAt.UTC().Format("20060102T150405Z")
	name := fmt.Sprintf("import_manifest_%s_%s.json", ts, manifest.RunID)
	path := filepath.Join(outputDir, name)
	return path, writeJSONFile(path, manifest)
}
