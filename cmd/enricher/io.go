package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"enricher/internal/diagnostic"
)

// readTargets reads a JSON array of objects, or a single object.
func readTargets(path string, stdin io.Reader) ([]any, error) {
	var (
		raw []byte
		err error
	)

	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var one map[string]any
		if err = json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("parse targets: %w", err)
		}

		return []any{one}, nil
	}

	var targets []map[string]any
	if err = json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}

	out := make([]any, len(targets))
	for i, t := range targets {
		out[i] = t
	}

	return out, nil
}

func writeTargets(path string, stdout io.Writer, targets []any) error {
	out, err := json.MarshalIndent(targets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode targets: %w", err)
	}

	out = append(out, '\n')

	if path == "-" {
		_, err = stdout.Write(out)
		return err
	}

	return os.WriteFile(path, out, 0o644)
}

func printDiagnostics(w io.Writer, d *diagnostic.Diagnostics) {
	if d == nil {
		return
	}

	for _, list := range [][]diagnostic.Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range list {
			fmt.Fprintf(w, "%s: %s\n", diag.Severity, diag)
		}
	}
}
