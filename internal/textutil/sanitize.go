package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxTitleRunes bounds stored animation titles.
const MaxTitleRunes = 200

// SanitizeTitle normalizes an animation title: NFC, control characters
// dropped, whitespace runs collapsed to one space, and the result truncated
// to MaxTitleRunes.
func SanitizeTitle(title string) string {
	title = norm.NFC.String(title)
	var b strings.Builder
	space := false
	count := 0
	for _, r := range strings.TrimSpace(title) {
		if count >= MaxTitleRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
			count++
			if count >= MaxTitleRunes {
				break
			}
		}
		space = false
		b.WriteRune(r)
		count++
	}
	return strings.TrimRight(b.String(), " ")
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
