package domain

import "strings"

// Tag is a colored label owned by a single user.
// Name is unique per owner; Color is a 6-hex-digit string like "#3498db".
type Tag struct {
	Timestamps
	ID      string `json:"id"`
	OwnerID string `json:"user_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

// NormalizeTagName canonicalizes a tag name for uniqueness checks.
// Trims whitespace and lowercases, so "Work" and "work " collide.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
