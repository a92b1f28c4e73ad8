package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxRawTextLen bounds stored OCR text.
const MaxRawTextLen = 255

var sanitizer = bluemonday.StrictPolicy()

// SanitizeText strips any markup from client supplied text, trims it and caps its length in runes.
func SanitizeText(input string) string {
	out := strings.TrimSpace(sanitizer.Sanitize(input))
	if utf8.RuneCountInString(out) <= MaxRawTextLen {
		return out
	}
	r := []rune(out)
	return string(r[:MaxRawTextLen])
}
