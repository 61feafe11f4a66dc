package mail

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// DefaultDialTimeout bounds connection establishment only
const DefaultDialTimeout = 30 * time.Second

// SMTPTransport talks to a relay with net/smtp
type SMTPTransport struct {
	// LocalName is sent with EHLO; net/smtp uses "localhost" if empty
	LocalName string
	// DialTimeout bounds the TCP connect; DefaultDialTimeout if zero
	DialTimeout time.Duration
	// TLSConfig is cloned for STARTTLS; ServerName is always the relay host
	TLSConfig *tls.Config
}

// Connect dials the relay and reads its greeting
func (t *SMTPTransport) Connect(host string, port int) (Session, error) {
	timeout := t.DialTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return nil, err
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if t.LocalName != "" {
		if err := client.Hello(t.LocalName); err != nil {
			client.Close()
			return nil, err
		}
	}

	return &smtpSession{client: client, host: host, tlsConfig: t.TLSConfig}, nil
}

type smtpSession struct {
	client    *smtp.Client
	host      string
	tlsConfig *tls.Config
}

func (s *smtpSession) StartTLS() error {
	if ok, _ := s.client.Extension("STARTTLS"); !ok {
		return ErrStartTLSUnsupported
	}

	cfg := &tls.Config{}
	if s.tlsConfig != nil {
		cfg = s.tlsConfig.Clone()
	}
	cfg.ServerName = s.host

	if err := s.client.StartTLS(cfg); err != nil {
		// a protocol level refusal counts as unsupported, a failed
		// handshake does not
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) {
			return fmt.Errorf("%w: %v", ErrStartTLSUnsupported, err)
		}
		return err
	}
	return nil
}

// Auth picks the strongest advertised mechanism of CRAM-MD5, PLAIN and
// LOGIN. Credentials go out even without TLS; deliver only gets here once
// the STARTTLS policy has been satisfied.
func (s *smtpSession) Auth(user, password string) error {
	_, mechs := s.client.Extension("AUTH")
	return s.client.Auth(authFor(mechs, user, password))
}

func authFor(advertised, user, password string) smtp.Auth {
	offered := map[string]bool{}
	for _, m := range strings.Fields(strings.ToUpper(advertised)) {
		offered[m] = true
	}

	switch {
	case offered["CRAM-MD5"]:
		return smtp.CRAMMD5Auth(user, password)
	case offered["PLAIN"]:
		return &plainAuth{user: user, password: password}
	case offered["LOGIN"]:
		return &loginAuth{user: user, password: password}
	}
	return &plainAuth{user: user, password: password}
}

// plainAuth is RFC 4616 PLAIN without the TLS requirement of smtp.PlainAuth
type plainAuth struct {
	user, password string
}

func (a *plainAuth) Start(*smtp.ServerInfo) (string, []byte, error) {
	return "PLAIN", []byte("\x00" + a.user + "\x00" + a.password), nil
}

func (a *plainAuth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return nil, errors.New("unexpected server challenge")
	}
	return nil, nil
}

// loginAuth answers the Username: and Password: prompts of AUTH LOGIN
type loginAuth struct {
	user, password string
}

func (a *loginAuth) Start(*smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(challenge []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSuffix(strings.TrimSpace(string(challenge)), ":")) {
	case "username", "user name":
		return []byte(a.user), nil
	case "password":
		return []byte(a.password), nil
	}
	return nil, fmt.Errorf("unexpected LOGIN challenge %q", challenge)
}

func (s *smtpSession) Send(from string, to []string, msg []byte) error {
	if err := s.client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := s.client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := s.client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s *smtpSession) Quit() error {
	return s.client.Quit()
}

func (s *smtpSession) Close() error {
	return s.client.Close()
}
