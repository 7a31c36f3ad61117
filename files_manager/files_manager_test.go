package files_manager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkspaceLifecycle(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ws, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(ws.Dir), workspacePrefix) {
		t.Errorf("unexpected workspace name %s", ws.Dir)
	}

	p, err := ws.WriteFile("in.docx", []byte("data"))
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ws.ReadFile("in.docx")
	if err != nil || string(got) != "data" {
		t.Fatalf("ReadFile = %q, %v", got, err)
	}
	if filepath.Dir(p) != ws.Dir {
		t.Errorf("file written outside workspace: %s", p)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Errorf("workspace still exists after Close: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := ws.WriteFile("late", nil); err != ErrClosed {
		t.Errorf("WriteFile after Close = %v, want ErrClosed", err)
	}
}

func TestWorkspacesAreUnique(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ws, err := m.Create()
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		defer ws.Close()
		if seen[ws.Dir] {
			t.Fatalf("duplicate workspace %s", ws.Dir)
		}
		seen[ws.Dir] = true
	}
}

func TestPathEscape(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	ws, _ := m.Create()
	defer ws.Close()

	if _, err := ws.Path("..", "etc"); err == nil {
		t.Error("expected escape to be rejected")
	}
	if _, err := ws.Path("out", "a.pdf"); err != nil {
		t.Errorf("nested path rejected: %v", err)
	}
}

func TestSafeFileName(t *testing.T) {
	tests := map[string]string{
		"report.docx":      "report.docx",
		"../../etc/passwd": "passwd",
		"a:b?.docx":        "a_b_.docx",
		"":                 "fallback",
		"..":               "fallback",
	}
	for in, want := range tests {
		if got := SafeFileName(in, "fallback"); got != want {
			t.Errorf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
