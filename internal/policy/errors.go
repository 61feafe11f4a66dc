package policy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownSection = errors.New("section not found in any config file")
	ErrInvalidValue   = errors.New("invalid value")
	ErrInvalidSyntax  = errors.New("invalid config file")
)

// ConfigError reports a config file, section or option that cannot be used
type ConfigError struct {
	File    string
	Section string
	Key     string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Section != "" {
		fmt.Fprintf(&b, "section %q: ", e.Section)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, "option %q: ", e.Key)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Kind names the error class in reports
func (e *ConfigError) Kind() string {
	return "ConfigError"
}
