package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ngnfs.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesAllFields(t *testing.T) {
	path := writeConfig(t, `{
		"map_server": "127.0.0.1:7000",
		"request_timeout_ms": 5000,
		"trace_file": "/tmp/ngnfs.trace"
	}`)

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MapServer != "127.0.0.1:7000" {
		t.Fatalf("MapServer = %q", c.MapServer)
	}
	if got := c.RequestTimeout(); got != 5*time.Second {
		t.Fatalf("RequestTimeout = %s, want 5s", got)
	}
	if c.TraceFile != "/tmp/ngnfs.trace" {
		t.Fatalf("TraceFile = %q", c.TraceFile)
	}
}

func TestLoadDefaultsRequestTimeoutToZero(t *testing.T) {
	path := writeConfig(t, `{"map_server": "127.0.0.1:7000"}`)

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.RequestTimeout(); got != 0 {
		t.Fatalf("RequestTimeout = %s, want 0 (caller applies its own default)", got)
	}
}

func TestLoadRejectsMissingMapServer(t *testing.T) {
	path := writeConfig(t, `{"request_timeout_ms": 1000}`)

	_, err := config.Load(path)
	if !errors.Is(err, cos.ErrInvalidArg) {
		t.Fatalf("Load error = %v, want ErrInvalidArg", err)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)

	_, err := config.Load(path)
	if !errors.Is(err, cos.ErrInvalidArg) {
		t.Fatalf("Load error = %v, want ErrInvalidArg", err)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
