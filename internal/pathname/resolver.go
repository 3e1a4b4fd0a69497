// ABOUTME: Natural-language path resolution for spoken folder references
// ABOUTME: Maps an ordered phrase table to filesystem paths anchored at the user home

package pathname

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Alias maps a spoken phrase to a filesystem path.
type Alias struct {
	Phrase string `toml:"phrase"`
	Path   string `toml:"path"`
}

// Resolver turns spoken folder references ("my documents", "the downloads
// folder") into filesystem paths. It is a static substring lookup, not a
// parser: the first matching phrase wins, and table order decides precedence
// for overlapping phrases ("documents folder" before "documents").
//
// Resolution order: user overrides, the compound drive cases, the builtin
// table, then the input itself (lowercased and trimmed) as a literal path.
type Resolver struct {
	home      string
	username  string
	root      string
	overrides []Alias
	table     []Alias
}

// NewResolver builds a resolver anchored at the current user's home directory.
func NewResolver() *Resolver {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	root := string(os.PathSeparator)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return newResolver(home, username, root)
}

// newResolver builds a resolver with explicit anchors, for tests.
func newResolver(home, username, root string) *Resolver {
	join := func(elem string) string { return filepath.Join(home, elem) }

	// Order matters: more specific phrases come before their bare forms.
	table := []Alias{
		{"my documents", join("Documents")},
		{"documents folder", join("Documents")},
		{"downloads folder", join("Downloads")},
		{"my downloads", join("Downloads")},
		{"desktop", join("Desktop")},
		{"pictures folder", join("Pictures")},
		{"music folder", join("Music")},
		{"videos folder", join("Videos")},
		{"c drive", `C:\`},
		{"d drive", `D:\`},
		{"root", root},
		{"home", home},
		{"user folder", home},
		{"documents", join("Documents")},
		{"downloads", join("Downloads")},
		{"pictures", join("Pictures")},
		{"music", join("Music")},
		{"videos", join("Videos")},
	}

	return &Resolver{
		home:     home,
		username: username,
		root:     root,
		table:    table,
	}
}

// SetOverrides installs user-defined aliases checked before the builtin table.
func (r *Resolver) SetOverrides(aliases []Alias) {
	r.overrides = aliases
}

// Resolve maps input to a filesystem path. Input that already looks like a
// path skips alias matching entirely; unmatched phrases pass through trimmed
// but otherwise unchanged.
func (r *Resolver) Resolve(input string) string {
	trimmed := strings.TrimSpace(input)
	if looksLikePath(trimmed) {
		return trimmed
	}
	phrase := strings.ToLower(trimmed)

	for _, a := range r.overrides {
		if strings.Contains(phrase, strings.ToLower(a.Phrase)) {
			return a.Path
		}
	}

	// Compound cases like "documents on the c drive" would otherwise stop
	// at the bare drive root, so they resolve before the table.
	if strings.Contains(phrase, "documents") {
		if strings.Contains(phrase, "c drive") {
			return filepath.Join(`C:\`, "Users", r.username, "Documents")
		}
		if strings.Contains(phrase, "d drive") {
			return filepath.Join(`D:\`, "Users", r.username, "Documents")
		}
	}

	for _, a := range r.table {
		if strings.Contains(phrase, a.Phrase) {
			return a.Path
		}
	}

	return trimmed
}

// looksLikePath reports whether s is already a filesystem path rather than a
// spoken phrase. Separators, dot paths, home shorthand, and drive prefixes
// all count.
func looksLikePath(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, `/\`) {
		return true
	}
	if s == "." || s == ".." || strings.HasPrefix(s, "~") {
		return true
	}
	return len(s) >= 2 && s[1] == ':'
}
