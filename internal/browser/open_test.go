package browser

import (
	"path/filepath"
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs int
	}{
		{"darwin", "open", 2},
		{"linux", "xdg-open", 2},
		{"freebsd", "xdg-open", 2},
		{"windows", "rundll32", 3},
	}
	for _, tc := range tests {
		t.Run(tc.goos, func(t *testing.T) {
			cmd, err := command(tc.goos, "https://example.com")
			if err != nil {
				t.Fatalf("command: %v", err)
			}
			if got := filepath.Base(cmd.Path); got != tc.wantName && filepath.Base(cmd.Args[0]) != tc.wantName {
				t.Errorf("launcher = %q, want %q", got, tc.wantName)
			}
			if len(cmd.Args) != tc.wantArgs || cmd.Args[len(cmd.Args)-1] != "https://example.com" {
				t.Errorf("args = %v", cmd.Args)
			}
		})
	}
}

func TestCommandUnsupported(t *testing.T) {
	if _, err := command("plan9", "https://example.com"); err == nil {
		t.Error("expected an error for an unsupported OS")
	}
}

func TestOpenRejectsNonWebURLs(t *testing.T) {
	for _, raw := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "example.com/page", "https://"} {
		t.Run(raw, func(t *testing.T) {
			if err := Open(raw); err == nil {
				t.Errorf("Open(%q) should be rejected", raw)
			}
		})
	}
}
