package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWriteFileAtomic_CreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "a.flow-meta.xml")

	if err := WriteFileAtomic(path, []byte("one")); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two")); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("expected replaced content, got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be cleaned up, found %d entries", len(entries))
	}
}

func TestWriteFileAtomic_KeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "f.yml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := WriteFileAtomic(path, []byte("y")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestWriteFileAtomic_RejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomic(dir, []byte("x")); err == nil {
		t.Fatalf("expected error when target is a directory")
	}
}

func TestStripBOM(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\xEF\xBB\xBFrules: {}", "rules: {}"},
		{"rules: {}", "rules: {}"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(StripBOM([]byte(tt.in))); got != tt.want {
			t.Fatalf("StripBOM(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
