// Package email renders and delivers notification e-mails over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const dialTimeout = 15 * time.Second

// SMTPConfig carries the SMTP connection and sender identity.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// SMTPSender delivers e-mails through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.FromAddress == "" {
		return nil, fmt.Errorf("smtp: host and from address are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg}, nil
}

// SendQualityAlert renders and sends a quality alert to a single recipient.
func (s *SMTPSender) SendQualityAlert(ctx context.Context, to string, alert QualityAlert) error {
	body, err := renderQualityAlert(alert)
	if err != nil {
		return err
	}
	return s.send(ctx, to, qualityAlertSubject(alert), body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, htmlContent string) error {
	msg, err := s.message(to, subject, htmlContent)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(dialTimeout),
		gomail.WithDialContextFunc(func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: dialTimeout}
			return d.DialContext(ctx, network, address)
		}),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp: create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPSender) message(to, subject, htmlContent string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.FromAddress); err != nil {
		return nil, fmt.Errorf("smtp: set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("smtp: set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)
	return msg, nil
}
