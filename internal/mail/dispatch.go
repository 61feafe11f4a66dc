package mail

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/obentoo/aptcron/internal/common/logger"
	"github.com/obentoo/aptcron/internal/common/output"
	"github.com/obentoo/aptcron/internal/common/version"
	"github.com/obentoo/aptcron/internal/policy"
	"github.com/obentoo/aptcron/internal/report"
)

// ExitDeliveryFailed is the exit code of a run whose report could not be
// delivered
const ExitDeliveryFailed = 2

// Dispatcher hands a finished report to the operator
type Dispatcher struct {
	Transport Transport
	Stdout    io.Writer
	Stderr    io.Writer
	// Colorize highlights reports printed to Stdout
	Colorize bool
	// ColorizeErrors paints delivery errors written to Stderr red
	ColorizeErrors bool
	// Now stamps the Date header; time.Now if nil
	Now func() time.Time
}

// Dispatch delivers text according to pol and returns the final exit code.
// code is the status of the run so far and is returned unchanged on
// success. Any delivery failure is written to Stderr and yields
// ExitDeliveryFailed. An empty report delivers nothing.
func (d *Dispatcher) Dispatch(text string, pol *policy.Policy, ctx report.Context, code int) int {
	if text == "" {
		logger.Debug("nothing to report")
		return code
	}

	if pol.NoMail {
		fmt.Fprintln(d.Stdout, output.HighlightReport(text, d.Colorize))
		return code
	}

	if err := d.send(text, pol, ctx); err != nil {
		logger.Debug("delivery to %s:%d failed: %v", pol.SMTPHost, pol.SMTPPort, err)
		fmt.Fprintln(d.Stderr, output.Paint(output.Error, d.ColorizeErrors, report.DescribeError(err)))
		return ExitDeliveryFailed
	}

	logger.Info("report mailed to %s via %s:%d", pol.MailTo, pol.SMTPHost, pol.SMTPPort)
	return code
}

func (d *Dispatcher) send(text string, pol *policy.Policy, ctx report.Context) error {
	msg, err := d.compose(text, pol, ctx)
	if err != nil {
		return err
	}

	session, err := d.Transport.Connect(pol.SMTPHost, pol.SMTPPort)
	if err != nil {
		return &TransportError{Op: "connect", Err: err}
	}

	if err := d.deliver(session, msg, pol); err != nil {
		session.Close()
		return err
	}

	if err := session.Quit(); err != nil {
		// the relay already accepted the message
		logger.Warn("closing SMTP session: %v", err)
	}
	return nil
}

func (d *Dispatcher) compose(text string, pol *policy.Policy, ctx report.Context) (*Message, error) {
	subject, err := ctx.Expand(pol.MailSubject)
	if err != nil {
		return nil, err
	}
	from, err := ctx.Expand(pol.MailFrom)
	if err != nil {
		return nil, err
	}
	to, err := ctx.Expand(pol.MailTo)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	return &Message{
		From:    from,
		To:      to,
		Subject: subject,
		Host:    ctx.Host,
		Body:    text,
		Date:    now(),
		Mailer:  version.UserAgent(),
	}, nil
}

func (d *Dispatcher) deliver(session Session, msg *Message, pol *policy.Policy) error {
	if pol.StartTLS != policy.StartTLSNo {
		err := session.StartTLS()
		switch {
		case err == nil:
			logger.Debug("STARTTLS negotiated with %s", pol.SMTPHost)
		case errors.Is(err, ErrStartTLSUnsupported) && pol.StartTLS == policy.StartTLSForce:
			return &TLSRequiredError{Host: pol.SMTPHost, Err: err}
		case errors.Is(err, ErrStartTLSUnsupported):
			logger.Warn("%s does not support STARTTLS, sending unencrypted", pol.SMTPHost)
		default:
			return &TransportError{Op: "starttls", Err: err}
		}
	}

	if pol.SMTPUser != "" && pol.SMTPPassword != "" {
		if err := session.Auth(pol.SMTPUser, pol.SMTPPassword); err != nil {
			return &TransportError{Op: "authenticate", Err: err}
		}
	}

	from, to := msg.Envelope()
	if err := session.Send(from, to, msg.Bytes()); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}
