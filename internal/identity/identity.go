// Package identity canonicalizes raw sender identifiers into the stable keys
// used for all per-sender state.
package identity

import "strings"

// Normalize converts a raw transport-reported sender identifier into a bare
// address key. Transport suffixes ("@c.us", "@lid", "@g.us") are stripped,
// along with "+", spaces, and dashes. Normalize never fails; garbage in
// yields a best-effort key out.
func Normalize(raw string) string {
	if at := strings.IndexByte(raw, '@'); at != -1 {
		raw = raw[:at]
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case '+', ' ', '-':
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Valid reports whether a normalized identity looks like a real address:
// 10 to 15 digits, nothing else.
func Valid(identity string) bool {
	if len(identity) < 10 || len(identity) > 15 {
		return false
	}
	for _, r := range identity {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
