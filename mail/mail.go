package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/domodwyer/mailyak/v3"

	"github.com/pamcare/pamcare/config"
)

// Mailer handles sending emails
type Mailer struct {
	configProvider *config.Provider
}

// New creates a new Mailer instance
func New(provider *config.Provider) (*Mailer, error) {
	if provider == nil {
		return nil, fmt.Errorf("config provider cannot be nil")
	}
	return &Mailer{configProvider: provider}, nil
}

// newMail builds a mailyak client for the current SMTP config.
func (m *Mailer) newMail(to string) (*mailyak.MailYak, *config.Smtp) {
	smtpCfg := m.configProvider.Get().Smtp

	mail := mailyak.New(fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port),
		smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host))
	mail.To(to)
	mail.From(smtpCfg.FromAddress)
	mail.FromName(smtpCfg.FromName)

	return mail, &smtpCfg
}

// send delivers the mail respecting the context deadline. mailyak has no
// context support, so the send runs in a goroutine and the context decides
// how long we wait for it.
func (m *Mailer) send(ctx context.Context, mail *mailyak.MailYak) error {
	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// SendOtpEmail sends the one-time login code.
func (m *Mailer) SendOtpEmail(ctx context.Context, email, code string, window time.Duration) error {
	mail, smtpCfg := m.newMail(email)

	mail.Subject(fmt.Sprintf("Your %s verification code", smtpCfg.FromName))
	mail.HTML().Set(fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2c7a7b;">%s</h2>
			<p>Use this code to verify your email address:</p>
			<p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #2c7a7b;">%s</p>
			<p>The code expires in %d minutes.</p>
			<p style="color: #718096; font-size: 12px;">If you did not request this code, you can safely ignore this email.</p>
		</div>
	`, smtpCfg.FromName, code, int(window.Minutes())))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	slog.Info("Successfully sent otp email", "email", email)
	return nil
}

// SendAppointmentReminder notifies the user of an upcoming appointment.
func (m *Mailer) SendAppointmentReminder(ctx context.Context, email, title string, when time.Time) error {
	mail, smtpCfg := m.newMail(email)

	mail.Subject(fmt.Sprintf("Reminder: %s", title))
	mail.HTML().Set(fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2c7a7b;">Upcoming appointment</h2>
			<p>This is a reminder for your appointment:</p>
			<p style="font-size: 18px; font-weight: bold;">%s</p>
			<p>Scheduled for <strong>%s</strong>.</p>
			<p style="color: #718096; font-size: 12px;">Sent by %s.</p>
		</div>
	`, title, when.Format("Monday, 2 January 2006 at 15:04 MST"), smtpCfg.FromName))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send appointment reminder: %w", err)
	}

	slog.Info("Successfully sent appointment reminder", "email", email)
	return nil
}
