// Package filter holds the pure admission predicates applied to inbound
// message bodies before any state is touched.
package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Runs of the same character at least this long are treated as spam.
const maxRepeatedRun = 11

// Normalize prepares a message body for processing.
func Normalize(body string) string {
	return strings.TrimSpace(body)
}

// IsSpam reports whether a message body should be dropped as spam:
// empty bodies, a single non-digit character, or any character repeated
// 11+ times consecutively. Single digits are exempt because "1" and "2"
// are menu selections.
func IsSpam(body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return true
	}

	if utf8.RuneCountInString(trimmed) == 1 {
		r, _ := utf8.DecodeRuneInString(trimmed)
		return !unicode.IsDigit(r)
	}

	return hasRepeatedRun(body, maxRepeatedRun)
}

// hasRepeatedRun reports whether any rune repeats at least n times in a
// row. A plain scan, since RE2 cannot express this without backreferences.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
