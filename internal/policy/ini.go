package policy

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// parseINI reads INI-style content: [section] headers, "key = value" or
// "key: value" options and full-line # or ; comments. Options before the
// first header belong to DEFAULT. Indented lines continue the previous
// value. Keys are lower-cased; section names are kept as written.
func (f *File) parseINI(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	section := DefaultSection
	var lastKey string
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if lastKey != "" && unicode.IsSpace(rune(raw[0])) {
			sec := f.section(section)
			sec[lastKey] = strings.TrimSpace(sec[lastKey] + "\n" + line)
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return f.syntaxError(lineNo, "unterminated section header %q", line)
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return f.syntaxError(lineNo, "empty section name")
			}
			section = name
			f.section(section)
			lastKey = ""
			continue
		}

		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			return f.syntaxError(lineNo, "expected key = value, got %q", line)
		}
		key := strings.ToLower(strings.TrimSpace(line[:sep]))
		if key == "" {
			return f.syntaxError(lineNo, "missing option name")
		}

		f.section(section)[key] = unquote(strings.TrimSpace(line[sep+1:]))
		lastKey = key
	}

	if err := scanner.Err(); err != nil {
		return &ConfigError{File: f.Path, Err: err}
	}
	return nil
}

func (f *File) syntaxError(line int, format string, args ...interface{}) error {
	return &ConfigError{
		File: f.Path,
		Err:  fmt.Errorf("%w: line %d: %s", ErrInvalidSyntax, line, fmt.Sprintf(format, args...)),
	}
}

// unquote strips one pair of matching surrounding quotes
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
