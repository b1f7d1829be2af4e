package broker

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// EmailBroker publishes notifications via Email. The channel identifier is
// a comma-separated recipient list; SMTP settings are shared configuration.
type EmailBroker struct {
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	from         string
	useTLS       bool
	logger       *logrus.Entry
}

// NewEmailBroker creates a new Email broker
func NewEmailBroker(smtpHost string, smtpPort int, smtpUsername, smtpPassword, from string, useTLS bool, logger *logrus.Entry) *EmailBroker {
	return &EmailBroker{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUsername: smtpUsername,
		smtpPassword: smtpPassword,
		from:         from,
		useTLS:       useTLS,
		logger:       logger,
	}
}

// Publish sends an email notification (implements Broker interface)
func (b *EmailBroker) Publish(ctx context.Context, channel, subject, body string) error {
	to := splitRecipients(channel)
	if len(to) == 0 {
		return fmt.Errorf("email channel %q contains no recipients", channel)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		b.from,
		strings.Join(to, ", "),
		subject,
		body,
	)

	addr := fmt.Sprintf("%s:%d", b.smtpHost, b.smtpPort)

	b.logger.WithFields(logrus.Fields{
		"smtp_host": b.smtpHost,
		"smtp_port": b.smtpPort,
		"from":      b.from,
		"to":        to,
		"subject":   subject,
	}).Debug("Sending email notification")

	var auth smtp.Auth
	if b.smtpUsername != "" && b.smtpPassword != "" {
		auth = smtp.PlainAuth("", b.smtpUsername, b.smtpPassword, b.smtpHost)
	}

	if b.useTLS {
		return b.sendWithTLS(addr, auth, to, []byte(msg))
	}

	err := smtp.SendMail(addr, auth, b.from, to, []byte(msg))
	if err == nil {
		b.logger.WithField("to", to).Info("Successfully published email notification")
	}
	return err
}

// sendWithTLS sends email with STARTTLS encryption
func (b *EmailBroker) sendWithTLS(addr string, auth smtp.Auth, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: b.smtpHost,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(b.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	defer w.Close()

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	b.logger.WithField("to", to).Info("Successfully published email notification")
	return nil
}

// splitRecipients parses a comma-separated channel identifier into addresses
func splitRecipients(channel string) []string {
	var to []string
	for _, part := range strings.Split(channel, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			to = append(to, addr)
		}
	}
	return to
}
