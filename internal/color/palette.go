// Package color provides the tag color palette and hex color validation.
package color

import "strings"

// Palette is the fixed set of default tag colors, in picker order.
//
//nolint:gochecknoglobals // Static palette shared with the web client
var Palette = []string{
	"#1abc9c",
	"#3498db",
	"#9b59b6",
	"#f1c40f",
	"#e67e22",
	"#e74c3c",
	"#34495e",
}

// ForTag picks a palette color for a tag based on its name.
// Uses a deterministic hash so the same name always gets the same color.
func ForTag(name string) string {
	h := 0
	for _, c := range name {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return Palette[h%len(Palette)]
}

// IsValidHex reports whether s is a 6-hex-digit color string like "#3498db".
func IsValidHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range strings.ToLower(s[1:]) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
