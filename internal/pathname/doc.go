// Package pathname resolves spoken folder references to filesystem paths.
//
// The resolver is a fixed substring table ("documents folder", "desktop",
// "c drive", ...) anchored at the user home, with user overrides layered in
// from an optional aliases.toml. First match wins; unmatched input passes
// through unchanged as a literal path.
package pathname
