package queue

import (
	"time"

	"github.com/pamcare/pamcare/db"
)

// Job types
const (
	JobTypeAppointmentReminder = "job_type_appointment_reminder"
	JobTypeOtpCleanup          = "job_type_otp_cleanup"
	JobTypeBackupLocal         = "job_type_backup_local"
)

// Job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// NewRecurrentJob builds a pending job that reschedules itself with the
// given interval. The first run is due immediately.
func NewRecurrentJob(jobType string, interval time.Duration) db.Job {
	return db.Job{
		JobType:     jobType,
		Status:      StatusPending,
		MaxAttempts: 3,
		Recurrent:   true,
		Interval:    interval,
	}
}
