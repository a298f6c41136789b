// Package normalize folds team names into a canonical comparison form.
package normalize

import "strings"

// Name lowercases s, replaces every character outside [a-z0-9] with a
// space, collapses runs of whitespace to a single space, and trims the
// ends. The function is total and idempotent, which makes it safe to apply
// to feed names and request names alike before comparing them.
func Name(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
