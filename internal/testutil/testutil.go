// Package testutil provides shared helpers for datadeck tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FixturePath locates a data file under testdata/fixtures.
func FixturePath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(FindFixturesDir(t), name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fixture %s not found: %v", name, err)
	}
	return path
}

// TempCopy copies a fixture into a temp directory so tests can mutate it.
func TempCopy(t *testing.T, fixtureName string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), fixtureName)
	if err := copyFile(FixturePath(t, fixtureName), dst); err != nil {
		t.Fatalf("failed to copy fixture %s: %v", fixtureName, err)
	}
	return dst
}

// WriteCSV writes inline CSV content to a temp file and returns its path.
func WriteCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// FindFixturesDir locates the testdata/fixtures directory.
func FindFixturesDir(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for i := 0; i < 10; i++ {
		fixturesDir := filepath.Join(dir, "testdata", "fixtures")
		if info, err := os.Stat(fixturesDir); err == nil && info.IsDir() {
			return fixturesDir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatalf("could not find testdata/fixtures directory")
	return ""
}

// FindGoldenDir locates the testdata/golden directory.
func FindGoldenDir(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for i := 0; i < 10; i++ {
		goldenDir := filepath.Join(dir, "testdata", "golden")
		if info, err := os.Stat(goldenDir); err == nil && info.IsDir() {
			return goldenDir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatalf("could not find testdata/golden directory")
	return ""
}

// Golden compares output against a golden file.
// If GOLDEN_UPDATE=1 is set, updates the golden file instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	goldenDir := FindGoldenDir(t)
	goldenPath := filepath.Join(goldenDir, name+".golden")

	if os.Getenv("GOLDEN_UPDATE") == "1" {
		if err := os.WriteFile(goldenPath, got, 0644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file not found: %s\nGot:\n%s\n\nRun with GOLDEN_UPDATE=1 to create", goldenPath, got)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if !bytes.Equal(normalizeNewlines(got), normalizeNewlines(want)) {
		t.Errorf("output mismatch for %s\nGot:\n%s\nWant:\n%s", name, got, want)
	}
}

// GoldenJSON compares JSON output against a golden file (normalized).
func GoldenJSON(t *testing.T, name string, got []byte) {
	t.Helper()

	var gotObj any
	if err := json.Unmarshal(got, &gotObj); err != nil {
		t.Fatalf("failed to parse output as JSON: %v\nGot: %s", err, got)
	}

	normalized, err := json.MarshalIndent(gotObj, "", "  ")
	if err != nil {
		t.Fatalf("failed to normalize JSON: %v", err)
	}

	Golden(t, name, normalized)
}

// CaptureOutput captures stdout and stderr from a function.
func CaptureOutput(fn func(out, errOut io.Writer)) (stdout, stderr string) {
	var outBuf, errBuf bytes.Buffer
	fn(&outBuf, &errBuf)
	return outBuf.String(), errBuf.String()
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}

func normalizeNewlines(b []byte) []byte {
	return []byte(strings.ReplaceAll(string(b), "\r\n", "\n"))
}
