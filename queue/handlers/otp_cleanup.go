package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pamcare/pamcare/db"
)

// OtpCleanupHandler removes verification codes that expired and will never
// be accepted again.
type OtpCleanupHandler struct {
	dbOtp  db.DbOtp
	logger *slog.Logger
}

func NewOtpCleanupHandler(dbOtp db.DbOtp, logger *slog.Logger) *OtpCleanupHandler {
	if dbOtp == nil || logger == nil {
		panic("NewOtpCleanupHandler: received nil dependency")
	}
	return &OtpCleanupHandler{
		dbOtp:  dbOtp,
		logger: logger.With("job_handler", "otp_cleanup"),
	}
}

// Handle implements the JobHandler interface for expired code cleanup.
func (h *OtpCleanupHandler) Handle(ctx context.Context, job db.Job) error {
	removed, err := h.dbOtp.DeleteExpiredOtps(time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired codes: %w", err)
	}

	if removed > 0 {
		h.logger.Info("removed expired verification codes", "count", removed)
	}
	return nil
}
