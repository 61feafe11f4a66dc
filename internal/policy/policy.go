// Package policy resolves defaults, config files and command line overrides
// into the effective policy of a single run.
package policy

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSection is the fallback section every other section inherits from
const DefaultSection = "DEFAULT"

// Option names, shared by config files and command line flags
const (
	KeyNoUpdate     = "no-update"
	KeyOnlyNew      = "only-new"
	KeyForce        = "force"
	KeyNoMail       = "no-mail"
	KeyMailFrom     = "mail-from"
	KeyMailTo       = "mail-to"
	KeyMailSubject  = "mail-subject"
	KeySMTPHost     = "smtp-host"
	KeySMTPPort     = "smtp-port"
	KeySMTPUser     = "smtp-user"
	KeySMTPPassword = "smtp-password"
	KeySMTPStartTLS = "smtp-starttls"
)

// Keys returns every option name in documentation order
func Keys() []string {
	return []string{
		KeyNoUpdate, KeyOnlyNew, KeyForce, KeyNoMail,
		KeyMailFrom, KeyMailTo, KeyMailSubject,
		KeySMTPHost, KeySMTPPort, KeySMTPUser, KeySMTPPassword, KeySMTPStartTLS,
	}
}

// IsBool reports whether key is a yes/no option
func IsBool(key string) bool {
	switch key {
	case KeyNoUpdate, KeyOnlyNew, KeyForce, KeyNoMail:
		return true
	}
	return false
}

// Defaults returns the built-in value of every option for host
func Defaults(host string) map[string]string {
	return map[string]string{
		KeyNoUpdate:     "no",
		KeyOnlyNew:      "no",
		KeyForce:        "no",
		KeyNoMail:       "no",
		KeyMailFrom:     "root@" + host,
		KeyMailTo:       "root@" + host,
		KeyMailSubject:  "[aptcron] {shorthost}: {num} APT updates",
		KeySMTPHost:     "localhost",
		KeySMTPPort:     "25",
		KeySMTPUser:     "",
		KeySMTPPassword: "",
		KeySMTPStartTLS: string(StartTLSForce),
	}
}

// StartTLSMode selects how STARTTLS is negotiated with the mail relay
type StartTLSMode string

const (
	// StartTLSNo never attempts STARTTLS
	StartTLSNo StartTLSMode = "no"
	// StartTLSYes attempts STARTTLS and continues in plain text if unsupported
	StartTLSYes StartTLSMode = "yes"
	// StartTLSForce attempts STARTTLS and fails delivery if unsupported
	StartTLSForce StartTLSMode = "force"
)

// ParseStartTLSMode validates a STARTTLS mode name
func ParseStartTLSMode(s string) (StartTLSMode, error) {
	switch mode := StartTLSMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case StartTLSNo, StartTLSYes, StartTLSForce:
		return mode, nil
	}
	return "", fmt.Errorf("%w: %q is not one of no, yes, force", ErrInvalidValue, s)
}

// String implements pflag.Value
func (m *StartTLSMode) String() string {
	return string(*m)
}

// Set implements pflag.Value
func (m *StartTLSMode) Set(s string) error {
	mode, err := ParseStartTLSMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Type implements pflag.Value
func (m *StartTLSMode) Type() string {
	return "{no,yes,force}"
}

// Policy is the effective, fully resolved configuration of a run.
// It is not modified after Resolve returns it.
type Policy struct {
	NoUpdate bool
	OnlyNew  bool
	Force    bool
	NoMail   bool

	MailFrom    string
	MailTo      string
	MailSubject string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	StartTLS     StartTLSMode

	raw map[string]string
}

// Get returns the stored string value of an option
func (p *Policy) Get(key string) string {
	return p.raw[key]
}

// Raw returns a copy of every stored option value
func (p *Policy) Raw() map[string]string {
	out := make(map[string]string, len(p.raw))
	for k, v := range p.raw {
		out[k] = v
	}
	return out
}

// ParseBool accepts the boolean spellings of INI style configs
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
}

// build converts stored values into a Policy. The first invalid value is
// returned as a *ConfigError for section.
func build(values map[string]string, section string) (*Policy, error) {
	p := &Policy{raw: values}

	bools := []struct {
		key string
		dst *bool
	}{
		{KeyNoUpdate, &p.NoUpdate},
		{KeyOnlyNew, &p.OnlyNew},
		{KeyForce, &p.Force},
		{KeyNoMail, &p.NoMail},
	}
	for _, b := range bools {
		v, err := ParseBool(values[b.key])
		if err != nil {
			return nil, &ConfigError{Section: section, Key: b.key, Err: err}
		}
		*b.dst = v
	}

	port, err := strconv.Atoi(strings.TrimSpace(values[KeySMTPPort]))
	if err != nil || port < 1 || port > 65535 {
		return nil, &ConfigError{
			Section: section,
			Key:     KeySMTPPort,
			Err:     fmt.Errorf("%w: %q is not a TCP port", ErrInvalidValue, values[KeySMTPPort]),
		}
	}
	p.SMTPPort = port

	mode, err := ParseStartTLSMode(values[KeySMTPStartTLS])
	if err != nil {
		return nil, &ConfigError{Section: section, Key: KeySMTPStartTLS, Err: err}
	}
	p.StartTLS = mode

	p.MailFrom = values[KeyMailFrom]
	p.MailTo = values[KeyMailTo]
	p.MailSubject = values[KeyMailSubject]
	p.SMTPHost = values[KeySMTPHost]
	p.SMTPUser = values[KeySMTPUser]
	p.SMTPPassword = values[KeySMTPPassword]

	return p, nil
}
