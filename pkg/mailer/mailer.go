// Package mailer delivers magic-link sign-in emails over SMTP.
package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/modelmagic/modelmagic/pkg/config"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	host   string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password),
		from:   cfg.SMTP.From,
		host:   cfg.Host,
	}
}

// SendMagicLink mails the single-use login link for the token.
func (m *Mailer) SendMagicLink(to, token string) error {
	link := fmt.Sprintf("https://%s/auth/verify?token=%s", m.host, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Sign in to ModelMagic")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Click <a href="%s">here</a> to sign in. The link expires in 15 minutes.</p>`, link))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send magic link to %s: %w", to, err)
	}
	return nil
}
