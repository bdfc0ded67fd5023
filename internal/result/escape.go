package result

import "html"

// Escape maps &, <, >, " and ' to their entity forms. Every value that
// ends up in a Block goes through here exactly once.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Unescape reverses Escape. Presenters that draw to a terminal call it once
// per field.
func Unescape(s string) string {
	return html.UnescapeString(s)
}
