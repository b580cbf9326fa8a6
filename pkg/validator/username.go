package validator

import "strings"

// NormalizeUsername trims surrounding whitespace and lowercases, so that
// "  Ama Mensah " and "ama mensah" name the same account
func NormalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
