package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("test message %s", "arg") }, "[DEBUG] test message arg\n"},
		{"info", func() { Info("indexed %d chunks", 42) }, "[INFO] indexed 42 chunks\n"},
		{"warn", func() { Warn("skipping %s", "empty.md") }, "[WARN] skipping empty.md\n"},
		{"section", func() { Section("Retrieval") }, "\n=== Retrieval ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer reset()

			var buf bytes.Buffer
			SetOutput(&buf)
			SetVerbose(true)

			tt.log()

			if got := buf.String(); got != tt.want {
				t.Errorf("unexpected output: %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("d")
	Info("i")
	Warn("w")
	Section("s")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestL_IgnoresVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	L().Errorw("watch failed", "path", "docs")
	Sync()

	out := buf.String()
	if !strings.HasPrefix(out, "[ERROR] watch failed") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, `"path": "docs"`) {
		t.Errorf("expected structured field in output: %q", out)
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
