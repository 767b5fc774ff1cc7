// Package logutil holds helpers for keeping log attributes readable.
package logutil

// TruncateForLog shortens s to at most maxLen runes, appending "..." when cut.
// Imported documents can carry very long names and descriptions.
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
