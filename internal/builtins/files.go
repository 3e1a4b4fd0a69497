// ABOUTME: Files pack locates files by name and reads them behind a confirmation latch.
// ABOUTME: Directories may be named in natural language; binary files are refused.

package builtins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cbbisht2004/Yogi/internal/pathname"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

const (
	// defaultMaxDepth bounds the search walk when the model gives no depth.
	defaultMaxDepth = 5

	// maxFileChars caps how much file content one response may carry.
	maxFileChars = 4000
)

// FilesPack creates the file lookup pack.
func FilesPack(resolver *pathname.Resolver) *tools.Pack {
	h := &fileHandlers{resolver: resolver}
	return &tools.Pack{
		ID: "core.files",
		Tools: []*tools.Tool{
			{
				Name:        "find_and_read_file",
				Description: "Find a file by name and return its contents. Accepts natural language for the directory. Asks for confirmation before reading.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"filename":{"type":"string","description":"Name of the file to find"},"directory":{"type":"string","description":"Where to search, e.g. 'my documents' or a path"},"max_depth":{"type":"integer","description":"How many directory levels deep to search"},"confirm":{"type":"boolean","description":"Set true to actually read the file once found"}},"required":["filename"]}`),
				Handler:     h.FindAndRead,
			},
		},
	}
}

type fileHandlers struct {
	resolver *pathname.Resolver
}

type findReadFileInput struct {
	Filename  string `json:"filename"`
	Directory string `json:"directory"`
	MaxDepth  int    `json:"max_depth"`
	Confirm   bool   `json:"confirm"`
}

func (h *fileHandlers) FindAndRead(ctx context.Context, input json.RawMessage) (string, error) {
	var in findReadFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	dir := in.Directory
	if dir == "" {
		dir = "."
	}
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	resolved := h.resolver.Resolve(dir)
	path, found := findFile(in.Filename, resolved, maxDepth)
	if !found {
		return fmt.Sprintf("File '%s' not found in '%s' (searched up to depth %d).", in.Filename, resolved, maxDepth), nil
	}

	// Two-step latch: never disclose content without an explicit confirm.
	if !in.Confirm {
		return fmt.Sprintf("File found: %s\n\nDo you want to read this file? If yes, call this tool again with 'confirm=True'.", path), nil
	}

	if !isTextFile(path) {
		return fmt.Sprintf("File '%s' appears to be binary or not a text file. Reading as text is not supported.", path), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading file %s: %v", path, err), nil
	}

	text := string(content)
	if utf8.RuneCountInString(text) > maxFileChars {
		truncated := string([]rune(text)[:maxFileChars])
		return fmt.Sprintf("File '%s' is too large to display in full. Showing first %d characters:\n\n%s", path, maxFileChars, truncated), nil
	}
	return fmt.Sprintf("File found: %s\n\n%s", path, text), nil
}

// findFile walks the tree under root looking for an exact filename match.
// Depth is the separator count of a directory's path relative to root, so
// root and its immediate subdirectories both sit at depth zero.
func findFile(filename, root string, maxDepth int) (string, bool) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}

	var match string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return fs.SkipDir
			}
			if rel != "." && strings.Count(rel, string(os.PathSeparator)) > maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == filename {
			match = path
			return fs.SkipAll
		}
		return nil
	})

	return match, match != ""
}

// isTextFile reports whether the first 512 bytes look like text: no NUL
// bytes and valid UTF-8.
func isTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	chunk := buf[:n]
	if bytes.IndexByte(chunk, 0) != -1 {
		return false
	}

	// The sample window can split a multibyte rune at the cut.
	for i := 0; i < 3 && len(chunk) > 0 && !utf8.Valid(chunk); i++ {
		chunk = chunk[:len(chunk)-1]
	}
	return utf8.Valid(chunk)
}
