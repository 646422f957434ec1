package suggestion

import (
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
)

// EncodeLine renders s as a single log line "author: text".
// Backslashes, CR and LF are escaped in both fields and ':' in the author,
// so the first unescaped ':' always ends the author.
func EncodeLine(s domain.Suggestion) string {
	var b strings.Builder

	b.Grow(len(s.Author) + len(s.Text) + 2)
	escape(&b, s.Author, true)
	b.WriteString(": ")
	escape(&b, s.Text, false)

	return b.String()
}

// DecodeLine parses a line written by EncodeLine. Lines written without
// escaping decode the same way as long as the author holds no ':'.
// Returns false for blank lines and lines without a separator.
func DecodeLine(line string) (domain.Suggestion, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.Suggestion{}, false
	}

	sep := separatorIndex(line)
	if sep < 0 {
		return domain.Suggestion{}, false
	}

	return domain.Suggestion{
		Author: unescape(line[:sep]),
		Text:   strings.TrimSpace(unescape(line[sep+1:])),
	}, true
}

func escape(b *strings.Builder, s string, author bool) {
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == ':' && author:
			b.WriteString(`\:`)
		default:
			b.WriteRune(r)
		}
	}
}

func separatorIndex(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ':':
			return i
		}
	}

	return -1
}

// unescape reverses escape. Unknown escape sequences are kept verbatim.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])

			continue
		}

		i++

		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case ':':
			b.WriteByte(':')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}

	return b.String()
}
