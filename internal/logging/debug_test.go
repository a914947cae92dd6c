package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDebugLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	Debugf("ui", "dropped before enable")

	if err := EnableDebug(path); err != nil {
		t.Fatalf("EnableDebug: %v", err)
	}
	if !DebugEnabled() {
		t.Fatal("DebugEnabled() = false after EnableDebug")
	}
	Debugf("capture", "started %s at %d Hz", "loopback", 48000)
	if err := DisableDebug(); err != nil {
		t.Fatalf("DisableDebug: %v", err)
	}
	Debugf("ui", "dropped after disable")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read debug log: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "started loopback at 48000 Hz") || !strings.Contains(out, "category=capture") {
		t.Errorf("debug log missing entry:\n%s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("debug log has entries written while disabled:\n%s", out)
	}
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("debug log has %d lines, want 1", n)
	}
}
