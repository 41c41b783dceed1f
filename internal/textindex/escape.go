package textindex

import "strings"

// querySpecials are the characters significant to the query string
// syntax. Backslash is escaped too and must stay first in the list.
const querySpecials = "\\+-=&|><!(){}[]^\"~*?:/ "

// EscapeQuery escapes every query-syntax character in s with a backslash
// so the result is parsed as a single term. It is the default escaper for
// identifier lookups, where IRIs routinely contain ':' and '/'.
func EscapeQuery(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(querySpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
