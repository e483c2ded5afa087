package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureStderr(t *testing.T, run func() int) (int, string) {
	t.Helper()

	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stderr = w

	code := run()

	_ = w.Close()
	os.Stderr = oldStderr

	b, _ := io.ReadAll(r)
	_ = r.Close()

	return code, string(b)
}

func TestRunStartMissingConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	code, stderr := captureStderr(t, func() int {
		return runStart([]string{"--config", missing})
	})

	if code != 1 {
		t.Errorf("runStart() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "config file not found") {
		t.Errorf("stderr = %q, want config-not-found hint", stderr)
	}
}

func TestRunStartInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
repositories:
  - name: app
    path: relative/path
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stderr := captureStderr(t, func() int {
		return runStart([]string{"--config", path})
	})

	if code != 1 {
		t.Errorf("runStart() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "invalid configuration") {
		t.Errorf("stderr = %q, want validation error", stderr)
	}
}
