// Package sanitize normalizes untrusted filenames before they are used as
// storage keys.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Filename reduces an untrusted original filename to a form that is safe to
// join into a storage path: path components are stripped, whitespace becomes
// underscores, and anything outside [A-Za-z0-9_.-] is removed. Returns ""
// when nothing safe remains, in which case the upload should be rejected.
func Filename(name string) string {
	// Drop any directory components, whichever separator the client used.
	name = name[strings.LastIndexByte(name, '\\')+1:]
	name = filepath.Base(name)

	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}

// Ext returns the lowercase extension of name without the leading dot, or ""
// when the name has none.
func Ext(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return strings.TrimPrefix(ext, ".")
}
