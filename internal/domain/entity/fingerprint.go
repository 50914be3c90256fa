package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// TitleFingerprint returns the content fingerprint used for near-duplicate
// detection: the SHA-256 hex digest of the normalized title. Normalization
// lowercases, strips everything except letters, digits and spaces, and
// collapses runs of whitespace, so the same story syndicated under
// slightly different punctuation or casing hashes identically.
func TitleFingerprint(title string) string {
	normalized := normalizeTitle(title)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := true // trims leading whitespace
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// punctuation and symbols are dropped
	}

	return strings.TrimRight(b.String(), " ")
}
