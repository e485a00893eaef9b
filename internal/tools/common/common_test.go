package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFileKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "CATALOG_TEST_FROM_FILE=file\nCATALOG_TEST_PRESET=file\n# comment\nCATALOG_TEST_QUOTED=\"quoted value\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("CATALOG_TEST_PRESET", "env")
	t.Setenv("CATALOG_TEST_FROM_FILE", "")
	_ = os.Unsetenv("CATALOG_TEST_FROM_FILE")
	t.Cleanup(func() {
		_ = os.Unsetenv("CATALOG_TEST_QUOTED")
	})

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := os.Getenv("CATALOG_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("CATALOG_TEST_PRESET"); got != "env" {
		t.Fatalf("expected existing value kept, got %q", got)
	}
	if got := os.Getenv("CATALOG_TEST_QUOTED"); got != "quoted value" {
		t.Fatalf("expected unquoted value, got %q", got)
	}
}

func TestLoadEnvFileMissingIsNotAnError(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("expected nil error for empty path, got %v", err)
	}
}

func TestWriteCIResult(t *testing.T) {
	var buf bytes.Buffer
	WriteCIResult(&buf, false, "catalog list", []string{"a"}, errors.New("boom"))

	var got CIResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OK || got.Title != "catalog list" || got.Error != "boom" || len(got.Details) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}
