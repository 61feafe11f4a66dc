package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownField    = errors.New("unknown template field")
	ErrUnbalancedBrace = errors.New("unbalanced brace")
)

// TemplateError reports a mail template that cannot be expanded
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// Kind names the error class in reports
func (e *TemplateError) Kind() string {
	return "TemplateError"
}

// Context holds the values mail templates are expanded against.
// Num is only meaningful once the update count is known.
type Context struct {
	Host      string
	ShortHost string
	Num       int
	HasNum    bool
}

// NewContext creates a context for the given fully qualified host name
func NewContext(host string) Context {
	short, _, _ := strings.Cut(host, ".")
	return Context{
		Host:      host,
		ShortHost: short,
	}
}

// WithNum returns a copy of the context with the update count set
func (c Context) WithNum(n int) Context {
	c.Num = n
	c.HasNum = true
	return c
}

func (c Context) lookup(field string) (string, bool) {
	switch field {
	case "host":
		return c.Host, true
	case "shorthost":
		return c.ShortHost, true
	case "num":
		if !c.HasNum {
			return "?", true
		}
		return strconv.Itoa(c.Num), true
	}
	return "", false
}

// Expand substitutes {host}, {shorthost} and {num} in tmpl.
// Doubled braces produce literal braces.
func (c Context) Expand(tmpl string) (string, error) {
	var b strings.Builder

	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch ch {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &TemplateError{Template: tmpl, Err: ErrUnbalancedBrace}
			}
			field := tmpl[i+1 : i+1+end]
			value, ok := c.lookup(field)
			if !ok {
				return "", &TemplateError{Template: tmpl, Err: fmt.Errorf("%w: %q", ErrUnknownField, field)}
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &TemplateError{Template: tmpl, Err: ErrUnbalancedBrace}
		default:
			b.WriteByte(ch)
		}
	}

	return b.String(), nil
}
