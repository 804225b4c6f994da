package util

import "strings"

// NormalizeString lower-cases s and replaces spaces and dashes with underscores.
func NormalizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}
