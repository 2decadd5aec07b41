package main

import (
	"bufio"
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitWords splits a shell line on white space. Double quotes group words
// and a backslash escapes the next character.
func splitWords(s string) []string {
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Split(scanWords)
	var res []string
	for sc.Scan() {
		res = append(res, unescape(sc.Text()))
	}
	return res
}

func scanWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Skip leading spaces.
	start := 0
	for width := 0; start < len(data); start += width {
		var r rune
		r, width = utf8.DecodeRune(data[start:])
		if !unicode.IsSpace(r) {
			break
		}
	}

	inQuote := false
	if r, width := utf8.DecodeRune(data[start:]); r == '"' {
		start += width
		inQuote = true
	}

	inEscape := false
	for width, i := 0, start; i < len(data); i += width {
		var r rune
		r, width = utf8.DecodeRune(data[i:])
		switch {
		case inEscape:
			inEscape = false
		case r == '\\':
			inEscape = true
		case inQuote && r == '"':
			return i + width, data[start:i], nil
		case !inQuote && unicode.IsSpace(r):
			return i + width, data[start:i], nil
		}
	}

	// Final, non-terminated word.
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}

	// Request more data.
	return start, nil, nil
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
