package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/cmdgate/internal/domain"
)

func TestCheckFileContentEquals(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "greeting.txt"), []byte("hello orange\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewChecker(root)

	out := c.Check(domain.ExecutionResult{}, domain.FileContentEquals{Path: "greeting.txt", Expected: "hello orange\n"})
	if !out.Passed {
		t.Fatalf("expected pass, got %q", out.Detail)
	}

	out = c.Check(domain.ExecutionResult{}, domain.FileContentEquals{Path: "greeting.txt", Expected: "hello apple\n"})
	if out.Passed {
		t.Fatal("expected mismatch to fail")
	}
	if !strings.Contains(out.Detail, "differs") {
		t.Errorf("detail should mention the difference, got %q", out.Detail)
	}

	out = c.Check(domain.ExecutionResult{}, domain.FileContentEquals{Path: "missing.txt", Expected: "x"})
	if out.Passed {
		t.Fatal("expected missing file to fail")
	}
}

func TestCheckFileExistence(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "present.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	c := NewChecker(root)

	if out := c.Check(domain.ExecutionResult{}, domain.FileExists{Path: "present.txt"}); !out.Passed {
		t.Errorf("present file reported absent: %q", out.Detail)
	}
	if out := c.Check(domain.ExecutionResult{}, domain.FileExists{Path: "sub"}); out.Passed {
		t.Error("directory should not satisfy a file expectation")
	}
	if out := c.Check(domain.ExecutionResult{}, domain.FileAbsent{Path: "present.txt"}); out.Passed {
		t.Error("present file reported absent")
	}
	if out := c.Check(domain.ExecutionResult{}, domain.FileAbsent{Path: "gone.txt"}); !out.Passed {
		t.Errorf("missing file should satisfy absence: %q", out.Detail)
	}
	if out := c.Check(domain.ExecutionResult{}, domain.DirectoryExists{Path: "sub"}); !out.Passed {
		t.Errorf("directory reported missing: %q", out.Detail)
	}
	if out := c.Check(domain.ExecutionResult{}, domain.DirectoryExists{Path: "present.txt"}); out.Passed {
		t.Error("file should not satisfy a directory expectation")
	}
}

func TestCheckOutputContains(t *testing.T) {
	c := NewChecker(t.TempDir())
	result := domain.ExecutionResult{Stdout: "total 8\n-rw-r--r-- notes.txt\ndrwxr-xr-x sub\n"}

	out := c.Check(result, domain.OutputContains{Substrings: []string{"notes.txt", "sub"}})
	if !out.Passed {
		t.Fatalf("expected pass, got %q", out.Detail)
	}

	out = c.Check(result, domain.OutputContains{Substrings: []string{"notes.txt", "vanished.txt"}})
	if out.Passed {
		t.Fatal("expected missing substring to fail")
	}
	if !strings.Contains(out.Detail, "vanished.txt") {
		t.Errorf("detail should name the missing substring, got %q", out.Detail)
	}
}

func TestCheckNilExpectation(t *testing.T) {
	c := NewChecker(t.TempDir())
	if out := c.Check(domain.ExecutionResult{}, nil); out.Passed {
		t.Fatal("nil expectation must not pass")
	}
}
