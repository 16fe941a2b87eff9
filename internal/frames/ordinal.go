package frames

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BaseName strips any client-supplied directory prefix, accepting both slash
// styles, after NFC normalization.
func BaseName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// Extension returns the lowercased extension of name without the dot.
func Extension(name string) string {
	ext := path.Ext(BaseName(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ParseOrdinal recovers the 1-based frame ordinal from an uploaded file name.
// The ordinal is the token after the last '-' of the name with its extension
// removed, so "product-12.webp" yields 12.
func ParseOrdinal(name string) (int, error) {
	base := BaseName(name)
	stem := strings.TrimSuffix(base, path.Ext(base))

	idx := strings.LastIndex(stem, "-")
	if idx < 0 {
		return 0, NewError(KindMalformedName, nil, "file name %q has no \"-<number>\" suffix", base)
	}
	token := stem[idx+1:]
	if token == "" {
		return 0, NewError(KindMalformedName, nil, "file name %q has nothing after the last \"-\"", base)
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, NewError(KindNonNumericOrdinal, nil, "frame number %q in %q is not a whole number", token, base)
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, NewError(KindOrdinalOutOfRange, err, "frame number %q in %q is too large", token, base)
	}
	if n < 1 {
		return 0, NewError(KindOrdinalOutOfRange, nil, "frame number in %q must be 1 or greater", base)
	}
	return n, nil
}

// CanonicalName is the stored file name for a frame: the ordinal zero-padded
// to three digits and the lowercased extension.
func CanonicalName(ordinal int, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	return fmt.Sprintf("frame-%03d.%s", ordinal, ext)
}
