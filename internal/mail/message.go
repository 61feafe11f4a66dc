package mail

import (
	"mime"
	"net/mail"
	"strings"
	"time"
)

// Message is a plain text report mail
type Message struct {
	From    string
	To      string
	Subject string
	// Host is the host the report is about
	Host string
	Body string
	Date time.Time
	// Mailer fills X-Mailer when set
	Mailer string
}

// Bytes renders the message in RFC 5322 form with CRLF line endings
func (m *Message) Bytes() []byte {
	var b strings.Builder

	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	header("From", sanitizeHeader(m.From))
	header("To", sanitizeHeader(m.To))
	header("Subject", mime.QEncoding.Encode("utf-8", sanitizeHeader(m.Subject)))
	header("Date", m.Date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	header("X-AptCron", "yes")
	header("X-AptCron-Host", sanitizeHeader(m.Host))
	if m.Mailer != "" {
		header("X-Mailer", m.Mailer)
	}
	b.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	return []byte(b.String())
}

// Envelope returns the SMTP envelope sender and recipients. Header values
// that do not parse as addresses are used verbatim.
func (m *Message) Envelope() (string, []string) {
	from := strings.TrimSpace(m.From)
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
	}

	to := []string{strings.TrimSpace(m.To)}
	if list, err := mail.ParseAddressList(m.To); err == nil && len(list) > 0 {
		to = to[:0]
		for _, addr := range list {
			to = append(to, addr.Address)
		}
	}

	return from, to
}

// sanitizeHeader keeps a header value on a single line
func sanitizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
}
