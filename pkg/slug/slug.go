// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"errors"
	"strings"

	gosimple "github.com/gosimple/slug"
)

// MaxLength matches the width of the slug columns
const MaxLength = 150

var ErrEmpty = errors.New("name does not produce a usable slug")

// Make transliterates name into a lowercase, hyphen separated token.
// The result is deterministic and never longer than MaxLength.
func Make(name string) (string, error) {
	s := gosimple.MakeLang(name, "en")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}
