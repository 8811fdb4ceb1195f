package validate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestFile_ValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "test.json", `{
		"name": "Test Config",
		"description": "Test configuration",
		"width": 10,
		"height": 8,
		"palette_name": "classic",
		"messages": {
			"welcome": "Welcome!",
			"removed": "Gone: %d balls, %d points",
			"game_over": "Final: %d"
		}
	}`)

	result := File(path)
	if !result.Valid {
		t.Errorf("Expected valid config, but got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}
	if result.Config == nil || result.Config.Width != 10 {
		t.Errorf("Expected parsed config, got %+v", result.Config)
	}
}

func TestFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"invalid JSON", `{"name": "test", invalid json}`, "Invalid JSON"},
		{"unknown field", `{"name": "t", "width": 4, "height": 4, "grid_size": 4}`, "grid_size"},
		{"trailing data", `{"name": "t", "width": 4, "height": 4} {}`, "trailing data"},
		{"missing name", `{"width": 4, "height": 4}`, "name is required"},
		{"zero width", `{"name": "t", "width": 0, "height": 4}`, "width"},
		{"too tall", `{"name": "t", "width": 4, "height": 100}`, "height"},
		{"unknown palette", `{"name": "t", "width": 4, "height": 4, "palette_name": "neon"}`, "unknown palette"},
		{"duplicate colour", `{"name": "t", "width": 4, "height": 4, "palette": ["red", "red"]}`, "duplicate"},
		{"bad removed message", `{"name": "t", "width": 4, "height": 4, "messages": {"removed": "gone"}}`, "messages.removed"},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, fmt.Sprintf("config%d.json", i), tt.content)

			result := File(path)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			joined := strings.Join(result.Errors, "\n")
			if !strings.Contains(joined, tt.errPart) {
				t.Errorf("Expected error containing %q, got %v", tt.errPart, result.Errors)
			}
		})
	}
}

func TestFile_MissingFile(t *testing.T) {
	result := File(filepath.Join(t.TempDir(), "nope.json"))

	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestFile_Warnings(t *testing.T) {
	dir := t.TempDir()

	small := File(writeConfig(t, dir, "small.json", `{"name": "s", "width": 6, "height": 6, "palette": ["red", "blue"]}`))
	if !small.Valid {
		t.Fatalf("Expected valid config, got %v", small.Errors)
	}
	if len(small.Warnings) != 1 || !strings.Contains(small.Warnings[0], "at least 5") {
		t.Errorf("Expected small palette warning, got %v", small.Warnings)
	}

	both := File(writeConfig(t, dir, "both.json", `{"name": "b", "width": 6, "height": 6, "palette_name": "mono", "palette": ["a", "b", "c", "d", "e"]}`))
	if len(both.Warnings) != 1 || !strings.Contains(both.Warnings[0], "ignored") {
		t.Errorf("Expected palette_name warning, got %v", both.Warnings)
	}

	// a single cell can never hold a group, and five colours cannot fit
	tiny := File(writeConfig(t, dir, "tiny.json", `{"name": "t", "width": 1, "height": 1}`))
	if !tiny.Valid {
		t.Fatalf("Expected valid config, got %v", tiny.Errors)
	}
	joined := strings.Join(tiny.Warnings, "\n")
	if !strings.Contains(joined, "only has 1 cells") || !strings.Contains(joined, "5 of 5 sample deals") {
		t.Errorf("Expected size and playability warnings, got %v", tiny.Warnings)
	}
}

func TestDir(t *testing.T) {
	results, err := Dir(filepath.Join("..", "configs"))
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected the bundled configs to be found")
	}
	for _, r := range results {
		if !r.Valid {
			t.Errorf("Bundled config %s is invalid: %v", r.File, r.Errors)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].File > results[i].File {
			t.Errorf("Results not sorted: %s before %s", results[i-1].File, results[i].File)
		}
	}
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	good := File(writeConfig(t, dir, "good.json", `{"name": "Good", "width": 5, "height": 5}`))
	bad := File(writeConfig(t, dir, "bad.json", `{"name": "Bad", "width": -1, "height": 5}`))

	var buf bytes.Buffer
	if !Report(&buf, []Result{good}) {
		t.Error("Expected all valid")
	}
	if !strings.Contains(buf.String(), "Good: 5x5") {
		t.Errorf("Unexpected report: %s", buf.String())
	}

	buf.Reset()
	if Report(&buf, []Result{good, bad}) {
		t.Error("Expected a failure to be reported")
	}
	out := buf.String()
	if !strings.Contains(out, "❌ INVALID") || !strings.Contains(out, "Some configurations have errors") {
		t.Errorf("Unexpected report: %s", out)
	}
}
