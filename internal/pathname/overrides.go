// ABOUTME: Optional user alias overrides loaded from a TOML file
// ABOUTME: Array-of-tables format so user-defined precedence order survives parsing

package pathname

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// overridesFile is the on-disk shape of aliases.toml:
//
//	[[alias]]
//	phrase = "project folder"
//	path = "/home/me/src"
type overridesFile struct {
	Alias []Alias `toml:"alias"`
}

// LoadOverrides reads user aliases from a TOML file. A missing file is not
// an error; it simply yields no overrides.
func LoadOverrides(path string) ([]Alias, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading aliases file: %w", err)
	}

	var f overridesFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("parsing aliases file: %w", err)
	}

	return f.Alias, nil
}
