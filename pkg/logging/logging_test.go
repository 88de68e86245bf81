package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestInitWritesJSONToFile verifies the rotated file sink receives structured
// records carrying the static and component attributes.
func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goposter.log")
	Init(Options{Level: "debug", Format: "json", File: path})
	t.Cleanup(func() { Init(Options{Level: "info"}) })

	WithComponent("testcomp").Info().Str("k", "v").Msg("hello world")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatal("no log lines found")
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "goposter" {
		t.Errorf("app attr = %v", m["app"])
	}
	if m["component"] != "testcomp" {
		t.Errorf("component attr = %v", m["component"])
	}
	if m["k"] != "v" || m["message"] != "hello world" {
		t.Errorf("unexpected record %v", m)
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	Init(Options{Level: "nonsense"})
	if got := L().GetLevel().String(); got != "info" {
		t.Fatalf("level = %s, want info", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GOPOSTER_LOG_LEVEL", "warn")
	t.Setenv("GOPOSTER_LOG_FORMAT", "json")
	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || opts.File != "" {
		t.Fatalf("unexpected options %+v", opts)
	}
}
