package puush

import (
	"path/filepath"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// The puush server rejects non-ASCII filenames. Every rune outside ASCII
// (including invalid UTF-8) becomes a '?', like the desktop client does.
var asciiOnly = runes.Map(func(r rune) rune {
	if r > unicode.MaxASCII {
		return '?'
	}
	return r
})

// SanitizeFilename reduces name to its base name with non-ASCII runes replaced.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "file"
	}
	out, _, err := transform.String(asciiOnly, base)
	if err != nil {
		// runes.Map never fails; keep the input if it somehow does.
		return base
	}
	return out
}
