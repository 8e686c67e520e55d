// Package text provides rune-aware string helpers.
// Chat platforms enforce message limits in characters, not bytes, so every
// length or prefix computation on user-visible text goes through this package.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters such as Japanese or emoji count as one each.
//
// Examples:
//
//	CountRunes("hello")      // 5
//	CountRunes("こんにちは")  // 5
//	CountRunes("")           // 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// PrefixRunes returns the first n runes of text.
// If text has n runes or fewer it is returned unchanged; n <= 0 yields "".
func PrefixRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
