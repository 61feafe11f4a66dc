// Package mail delivers reports, either by SMTP or to standard output,
// and maps the delivery result onto the process exit code.
package mail

import (
	"errors"
)

// ErrStartTLSUnsupported is returned by Session.StartTLS when the relay
// does not offer or refuses STARTTLS
var ErrStartTLSUnsupported = errors.New("STARTTLS not supported by SMTP server")

// Transport opens sessions with a mail relay
type Transport interface {
	// Connect opens a session with the relay at host:port
	Connect(host string, port int) (Session, error)
}

// Session is one connection to a mail relay
type Session interface {
	// StartTLS upgrades the connection to TLS
	StartTLS() error

	// Auth authenticates with the relay
	Auth(user, password string) error

	// Send submits msg from the envelope sender to the recipients
	Send(from string, to []string, msg []byte) error

	// Quit ends the session politely
	Quit() error

	// Close drops the connection without ending the session
	Close() error
}

// TransportError reports a failed connect, authenticate or send step
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Kind names the error class in reports
func (e *TransportError) Kind() string {
	return "TransportError"
}

// TLSRequiredError is returned when STARTTLS is forced but the relay does
// not support it
type TLSRequiredError struct {
	Host string
	Err  error
}

func (e *TLSRequiredError) Error() string {
	return "STARTTLS forced but not supported by SMTP server " + e.Host
}

func (e *TLSRequiredError) Unwrap() error {
	return e.Err
}

// Kind names the error class in reports
func (e *TLSRequiredError) Kind() string {
	return "TLSRequiredError"
}
