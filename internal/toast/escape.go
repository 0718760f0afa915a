package toast

import (
	"encoding/xml"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// EscapeAttr escapes s for use inside a quoted XML attribute value.
// Quotes, angle brackets, ampersands and control whitespace are replaced
// with character references so the value survives a parse unchanged.
// Characters XML cannot carry at all become U+FFFD; check ValidText first
// when s must come back unchanged.
func EscapeAttr(s string) string {
	var b strings.Builder
	// strings.Builder never returns a write error
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// ValidText reports whether s is valid UTF-8 made only of characters XML 1.0
// allows: tab, newline, carriage return and U+0020 upward, minus the
// surrogates and U+FFFE, U+FFFF.
func ValidText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return false
		}
	}
	return true
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	}
	return false
}

// FileURI converts a local file path into a file:/// URI usable as an image
// or audio source. Windows drive paths are accepted on every platform.
// Relative paths are resolved against the working directory.
func FileURI(path string) string {
	if path == "" {
		return ""
	}
	if strings.Contains(path, "://") {
		return path
	}
	if !isDrivePath(path) && !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	p := strings.ReplaceAll(path, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// isDrivePath reports whether p looks like C:\ or C:/.
func isDrivePath(p string) bool {
	if len(p) < 3 || p[1] != ':' || (p[2] != '\\' && p[2] != '/') {
		return false
	}
	c := p[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// LocalPath returns the filesystem path of a file:/// URI, or "" when src is
// not a file URI.
func LocalPath(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	p := u.Path
	if len(p) > 3 && p[0] == '/' && isDrivePath(p[1:]) {
		return filepath.FromSlash(p[1:])
	}
	return filepath.FromSlash(p)
}
