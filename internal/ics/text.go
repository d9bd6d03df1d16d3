package ics

import "strings"

// maxLineOctets is the longest physical line the calendar format allows
// before folding, excluding the CRLF terminator.
const maxLineOctets = 75

// EscapeText escapes the four characters the calendar TEXT type reserves:
// backslash, semicolon, comma and newline. It is a single literal pass;
// escaping already-escaped text would double the backslashes, so callers
// must apply it exactly once per field.
func EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// CRLF input collapses to the escaped newline above.
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeText inverts EscapeText.
func UnescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FoldLine folds one logical content line into physical lines of at most 75
// octets: the first 75 octets verbatim, then continuation lines of up to 74
// octets each prefixed with a single space, joined by CRLF. Folding counts
// octets, not runes.
func FoldLine(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}
	var b strings.Builder
	b.WriteString(line[:maxLineOctets])
	rest := line[maxLineOctets:]
	for len(rest) > maxLineOctets-1 {
		b.WriteString("\r\n ")
		b.WriteString(rest[:maxLineOctets-1])
		rest = rest[maxLineOctets-1:]
	}
	if len(rest) > 0 {
		b.WriteString("\r\n ")
		b.WriteString(rest)
	}
	return b.String()
}

// UnfoldLines reverses folding on a full CRLF-terminated document, joining
// space-prefixed continuation lines back onto their logical line.
func UnfoldLines(text string) []string {
	physical := strings.Split(text, "\r\n")
	var logical []string
	for _, ln := range physical {
		if strings.HasPrefix(ln, " ") && len(logical) > 0 {
			logical[len(logical)-1] += ln[1:]
			continue
		}
		if ln != "" {
			logical = append(logical, ln)
		}
	}
	return logical
}
