// ABOUTME: Tests for the files pack.
// ABOUTME: Covers the confirm latch, depth bound, binary refusal, and truncation.

package builtins

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cbbisht2004/Yogi/internal/pathname"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

func newFilesPackDir(t *testing.T) (string, tools.Handler) {
	t.Helper()
	root := t.TempDir()
	pack := FilesPack(pathname.NewResolver())
	return root, findHandler(t, pack, "find_and_read_file")
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestFilesPackConfirmLatch(t *testing.T) {
	root, find := newFilesPackDir(t)
	path := writeTestFile(t, root, "hello.txt", "hi there")

	got := call(t, find, fmt.Sprintf(`{"filename":"hello.txt","directory":%q}`, root))
	if !strings.Contains(got, "File found: "+path) {
		t.Errorf("first call = %q, want found prompt for %q", got, path)
	}
	if !strings.Contains(got, "call this tool again with 'confirm=True'") {
		t.Errorf("first call = %q, want confirmation prompt", got)
	}
	if strings.Contains(got, "hi there") {
		t.Error("content disclosed before confirmation")
	}

	got = call(t, find, fmt.Sprintf(`{"filename":"hello.txt","directory":%q,"confirm":true}`, root))
	want := fmt.Sprintf("File found: %s\n\nhi there", path)
	if got != want {
		t.Errorf("confirmed call = %q, want %q", got, want)
	}
}

func TestFilesPackNotFound(t *testing.T) {
	root, find := newFilesPackDir(t)

	got := call(t, find, fmt.Sprintf(`{"filename":"ghost.txt","directory":%q}`, root))
	want := fmt.Sprintf("File '%s' not found in '%s' (searched up to depth %d).", "ghost.txt", root, defaultMaxDepth)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFilesPackDepthBound(t *testing.T) {
	root, find := newFilesPackDir(t)
	writeTestFile(t, root, filepath.Join("a", "b", "deep.txt"), "deep")
	writeTestFile(t, root, filepath.Join("a", "b", "c", "deeper.txt"), "deeper")

	got := call(t, find, fmt.Sprintf(`{"filename":"deep.txt","directory":%q,"max_depth":1,"confirm":true}`, root))
	if !strings.Contains(got, "deep") || strings.Contains(got, "not found") {
		t.Errorf("depth-1 search missed reachable file: %q", got)
	}

	got = call(t, find, fmt.Sprintf(`{"filename":"deeper.txt","directory":%q,"max_depth":1}`, root))
	if !strings.Contains(got, "not found") {
		t.Errorf("depth-1 search crossed the bound: %q", got)
	}
}

func TestFilesPackBinaryRefused(t *testing.T) {
	root, find := newFilesPackDir(t)
	path := filepath.Join(root, "blob.bin")
	if err := os.WriteFile(path, []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01, 0x02}, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got := call(t, find, fmt.Sprintf(`{"filename":"blob.bin","directory":%q,"confirm":true}`, root))
	want := fmt.Sprintf("File '%s' appears to be binary or not a text file. Reading as text is not supported.", path)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFilesPackTruncatesLargeFiles(t *testing.T) {
	root, find := newFilesPackDir(t)
	writeTestFile(t, root, "big.txt", strings.Repeat("x", maxFileChars+500))

	got := call(t, find, fmt.Sprintf(`{"filename":"big.txt","directory":%q,"confirm":true}`, root))
	if !strings.Contains(got, fmt.Sprintf("Showing first %d characters:", maxFileChars)) {
		t.Errorf("missing truncation notice: %q", got)
	}
	if !strings.HasSuffix(got, strings.Repeat("x", maxFileChars)) {
		t.Error("truncated content length is wrong")
	}
}
