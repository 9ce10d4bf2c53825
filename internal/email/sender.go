package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ServiceGmail    = "gmail"
	ServiceSMTP     = "smtp"
	ServiceSendGrid = "sendgrid"

	gmailHost = "smtp.gmail.com"
	gmailPort = 587
)

// ErrDisabled se devuelve cuando el envio de correos esta apagado.
var ErrDisabled = errors.New("email sender disabled")

// Sender define la interfaz para envio de correos de verificacion.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

// Options describe el proveedor de correo elegido por configuracion.
type Options struct {
	Enabled     bool
	Service     string
	From        string
	FromName    string
	Username    string
	Password    string
	SMTPHost    string
	SMTPPort    int
	UseTLS      bool
	ImplicitTLS bool
	SendGridKey string
}

// New arma el sender segun Service. Con Enabled=false devuelve uno deshabilitado
// y nunca falla; los errores solo salen de credenciales incompletas.
func New(opts Options) (Sender, error) {
	if !opts.Enabled {
		return NewDisabledSender("email sending is disabled"), nil
	}
	from := opts.From
	if strings.TrimSpace(from) == "" {
		from = opts.Username
	}

	switch strings.ToLower(strings.TrimSpace(opts.Service)) {
	case ServiceGmail, "":
		if opts.Username == "" || opts.Password == "" {
			return nil, errors.New("gmail requires username and app password")
		}
		return NewSMTPSender(gmailHost, gmailPort, opts.Username, opts.Password, from, opts.FromName, TLSStartTLS)
	case ServiceSMTP:
		return NewSMTPSender(opts.SMTPHost, opts.SMTPPort, opts.Username, opts.Password, from, opts.FromName, opts.tlsMode())
	case ServiceSendGrid:
		return NewSendGridSender(opts.SendGridKey, from, opts.FromName)
	default:
		return nil, fmt.Errorf("unknown email service %q", opts.Service)
	}
}

func (o Options) tlsMode() TLSMode {
	switch {
	case o.ImplicitTLS:
		return TLSImplicit
	case o.UseTLS:
		return TLSStartTLS
	default:
		return TLSNone
	}
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	if s.reason == "" {
		return ErrDisabled
	}
	return fmt.Errorf("%w: %s", ErrDisabled, s.reason)
}
