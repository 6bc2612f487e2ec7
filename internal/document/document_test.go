package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// writeTestFile writes content to a temp file and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// TestLoad tests YAML stream loading from disk.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("loads a single document", func(t *testing.T) {
		t.Parallel()
		path := writeTestFile(t, "tasks.yml", "- name: touch motd\n  file:\n    path: /etc/motd\n")

		roots, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(roots) != 1 {
			t.Fatalf("got %d documents, expected 1", len(roots))
		}
		if roots[0].Kind != yaml.SequenceNode {
			t.Errorf("got kind %d, expected sequence", roots[0].Kind)
		}
	})

	t.Run("loads multiple documents", func(t *testing.T) {
		t.Parallel()
		path := writeTestFile(t, "multi.yml", "---\nfirst: 1\n---\nsecond: 2\n")

		roots, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(roots) != 2 {
			t.Fatalf("got %d documents, expected 2", len(roots))
		}
	})

	t.Run("skips empty documents", func(t *testing.T) {
		t.Parallel()
		path := writeTestFile(t, "gaps.yml", "---\n---\nkept: true\n")

		roots, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(roots) != 1 {
			t.Fatalf("got %d documents, expected 1", len(roots))
		}
	})

	t.Run("empty file yields no documents", func(t *testing.T) {
		t.Parallel()
		path := writeTestFile(t, "empty.yml", "")

		roots, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(roots) != 0 {
			t.Errorf("got %d documents, expected 0", len(roots))
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			t.Error("missing file should not be reported as a parse error")
		}
	})

	t.Run("returns ParseError for malformed yaml", func(t *testing.T) {
		t.Parallel()
		path := writeTestFile(t, "broken.yml", "key: [unclosed\n")

		_, err := Load(path)
		if err == nil {
			t.Fatal("expected error for malformed yaml")
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %T", err)
		}
		if parseErr.Path != path {
			t.Errorf("got path %q, expected %q", parseErr.Path, path)
		}
		if parseErr.Unwrap() == nil {
			t.Error("expected wrapped decoder error")
		}
	})
}
