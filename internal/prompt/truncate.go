package prompt

// Truncate returns s shortened to at most n runes, with an ellipsis marker
// appended when anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Tail returns the last n runes of s, with an ellipsis marker prepended
// when anything was cut. Used where the most recent part of a transcript
// matters more than its beginning.
func Tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return "..." + string(runes[len(runes)-n:])
}
