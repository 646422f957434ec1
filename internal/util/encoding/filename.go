package encoding

import "strings"

// encodedPrefix marks names that had to be encoded. It is not a valid
// first character of a plain safe name.
const encodedPrefix = "~"

// SafeFilename maps an arbitrary name to a string usable as a single path
// element on every platform. Names made of ASCII letters, digits, '-', '_'
// and non-leading '.' are returned unchanged; all others are Crockford
// Base32 encoded behind a '~' prefix. The mapping is injective.
func SafeFilename(name string) string {
	if isSafeFilename(name) {
		return name
	}

	return encodedPrefix + EncodeCrockfordB32LC([]byte(name))
}

func isSafeFilename(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || len(name) > 128 {
		return false
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}

	return true
}
