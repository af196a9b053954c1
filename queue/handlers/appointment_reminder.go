package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pamcare/pamcare/config"
	"github.com/pamcare/pamcare/db"
)

// ReminderMailer is the slice of the mailer the reminder job needs.
type ReminderMailer interface {
	SendAppointmentReminder(ctx context.Context, email string, title string, when time.Time) error
}

// AppointmentReminderHandler sweeps for appointments due within the reminder
// lead window and emails their owners. Each appointment is reminded once.
type AppointmentReminderHandler struct {
	dbAppointments db.DbAppointments
	dbAuth         db.DbAuth
	configProvider *config.Provider
	mailer         ReminderMailer
	logger         *slog.Logger
}

func NewAppointmentReminderHandler(dbAppointments db.DbAppointments, dbAuth db.DbAuth, provider *config.Provider, mailer ReminderMailer, logger *slog.Logger) *AppointmentReminderHandler {
	if dbAppointments == nil || dbAuth == nil || provider == nil || mailer == nil || logger == nil {
		panic("NewAppointmentReminderHandler: received nil dependency")
	}
	return &AppointmentReminderHandler{
		dbAppointments: dbAppointments,
		dbAuth:         dbAuth,
		configProvider: provider,
		mailer:         mailer,
		logger:         logger.With("job_handler", "appointment_reminder"),
	}
}

// Handle implements the JobHandler interface for reminder sweeps.
func (h *AppointmentReminderHandler) Handle(ctx context.Context, job db.Job) error {
	cfg := h.configProvider.Get()

	now := time.Now()
	due, err := h.dbAppointments.ListDueReminders(now, now.Add(cfg.Reminders.Lead.Duration))
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	var failed int
	for _, appt := range due {
		if err := ctx.Err(); err != nil {
			return err
		}

		user, err := h.dbAuth.GetUserById(appt.UserID)
		if err != nil {
			h.logger.Error("failed to load appointment owner", "appointment_id", appt.ID, "err", err)
			failed++
			continue
		}
		if user == nil {
			// Owner deleted; drop the reminder so the sweep stops retrying it.
			if err := h.dbAppointments.MarkReminderSent(appt.ID); err != nil {
				h.logger.Error("failed to mark orphaned reminder", "appointment_id", appt.ID, "err", err)
			}
			continue
		}

		if err := h.mailer.SendAppointmentReminder(ctx, user.Email, appt.Title, appt.Date); err != nil {
			h.logger.Error("failed to send reminder", "appointment_id", appt.ID, "err", err)
			failed++
			continue
		}

		if err := h.dbAppointments.MarkReminderSent(appt.ID); err != nil {
			h.logger.Error("failed to mark reminder sent", "appointment_id", appt.ID, "err", err)
			failed++
		}
	}

	h.logger.Info("reminder sweep finished", "due", len(due), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("failed to remind %d of %d appointments", failed, len(due))
	}
	return nil
}
