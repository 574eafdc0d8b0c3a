package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var out []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m := map[string]interface{}{}
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestJSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, err := New(&Config{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	child := l.With(String("run_id", "r1"))
	child.Info("dropped by level")
	child.Warn("indicator skipped",
		String("source", "fred"),
		Int("observations", 0),
		Error(errors.New("status 400")),
	)

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
	got := lines[0]
	want := map[string]interface{}{
		"level":        "warn",
		"message":      "indicator skipped",
		"run_id":       "r1",
		"source":       "fred",
		"observations": float64(0),
		"error":        "status 400",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Format: "json", Output: "stdout"}); err == nil {
		t.Fatal("New() error = nil, want invalid level")
	}
}

func TestWithTypedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatal(err)
	}

	l.With(Strings("columns", []string{"GDP_Growth", "Inflation"})).
		Debug("macro table built", Float64("mean", 0.5), Error(nil))

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	cols, ok := lines[0]["columns"].([]interface{})
	if !ok || len(cols) != 2 || cols[0] != "GDP_Growth" {
		t.Errorf("columns = %v", lines[0]["columns"])
	}
	if lines[0]["mean"] != 0.5 {
		t.Errorf("mean = %v", lines[0]["mean"])
	}
	if _, ok := lines[0]["error"]; ok {
		t.Errorf("nil error was logged: %v", lines[0])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded", String("k", "v"))
	l.With(Int("n", 1)).Error("discarded")
}
