package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain is the generic fallback: read raw bytes as UTF-8 text.
// Invalid sequences are replaced with the replacement character.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
