package utils

import "strings"

// Slugify lowercases a name and collapses every run of non-alphanumeric
// characters into a single dash, trimming dashes from both ends.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingDash := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
