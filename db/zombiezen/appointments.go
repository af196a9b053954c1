package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pamcare/pamcare/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const appointmentColumns = `id, user_id, title, description, appointment_date, status, reminder_sent, created, updated`

func newAppointmentFromStmt(stmt *sqlite.Stmt) (*db.Appointment, error) {
	date, err := db.TimeParse(stmt.GetText("appointment_date"))
	if err != nil {
		return nil, fmt.Errorf("error parsing appointment_date time: %w", err)
	}

	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Appointment{
		ID:           stmt.GetText("id"),
		UserID:       stmt.GetText("user_id"),
		Title:        stmt.GetText("title"),
		Description:  stmt.GetText("description"),
		Date:         date,
		Status:       stmt.GetText("status"),
		ReminderSent: stmt.GetInt64("reminder_sent") != 0,
		Created:      created,
		Updated:      updated,
	}, nil
}

func (d *Db) CreateAppointment(a db.Appointment) (*db.Appointment, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = db.AppointmentScheduled
	}

	var created db.Appointment
	err = sqlitex.Execute(conn,
		`INSERT INTO appointments (id, user_id, title, description, appointment_date, status)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+appointmentColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempApp, err := newAppointmentFromStmt(stmt)
				if err == nil && tempApp != nil {
					created = *tempApp
				}
				return err
			},
			Args: []any{a.ID, a.UserID, a.Title, a.Description, db.TimeFormat(a.Date), a.Status},
		})

	if err != nil {
		return nil, fmt.Errorf("appointment insert failed: %w", err)
	}

	return &created, nil
}

// GetAppointmentById returns the row regardless of owner. Returns nil, nil
// when absent.
func (d *Db) GetAppointmentById(id string) (*db.Appointment, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var appointment *db.Appointment
	err = sqlitex.Execute(conn,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				appointment, err = newAppointmentFromStmt(stmt)
				return err
			},
			Args: []any{id},
		})

	if err != nil {
		return nil, err
	}

	return appointment, nil
}

func (d *Db) ListAppointments(userID string, p db.Pagination) ([]*db.Appointment, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	appointments := []*db.Appointment{}
	err = sqlitex.Execute(conn,
		`SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = ?
		ORDER BY appointment_date ASC
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				appointment, err := newAppointmentFromStmt(stmt)
				if err != nil {
					return err
				}
				appointments = append(appointments, appointment)
				return nil
			},
			Args: []any{userID, p.Limit, p.Offset()},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return appointments, nil
}

func (d *Db) CountAppointments(userID string) (int, error) {
	return d.countOne(`SELECT COUNT(*) FROM appointments WHERE user_id = ?`, userID)
}

func (d *Db) UpdateAppointment(a db.Appointment) (*db.Appointment, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var updated *db.Appointment
	err = sqlitex.Execute(conn,
		`UPDATE appointments
		SET title = ?,
			description = ?,
			appointment_date = ?,
			status = ?,
			reminder_sent = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?
		RETURNING `+appointmentColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				updated, err = newAppointmentFromStmt(stmt)
				return err
			},
			Args: []any{a.Title, a.Description, db.TimeFormat(a.Date), a.Status, a.ReminderSent, a.ID},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	if updated == nil {
		return nil, db.ErrNotFound
	}
	return updated, nil
}

func (d *Db) DeleteAppointment(id string) error {
	return d.deleteOne(`DELETE FROM appointments WHERE id = ?`, id)
}

// ListDueReminders returns appointments scheduled within [from, to) that are
// still scheduled and have no reminder sent yet.
func (d *Db) ListDueReminders(from, to time.Time) ([]*db.Appointment, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	appointments := []*db.Appointment{}
	err = sqlitex.Execute(conn,
		`SELECT `+appointmentColumns+`
		FROM appointments
		WHERE reminder_sent = FALSE
			AND status = 'scheduled'
			AND appointment_date >= ?
			AND appointment_date < ?
		ORDER BY appointment_date ASC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				appointment, err := newAppointmentFromStmt(stmt)
				if err != nil {
					return err
				}
				appointments = append(appointments, appointment)
				return nil
			},
			Args: []any{db.TimeFormat(from), db.TimeFormat(to)},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	return appointments, nil
}

func (d *Db) MarkReminderSent(id string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE appointments
		SET reminder_sent = TRUE,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
		})
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// countOne runs a single-value COUNT query.
func (d *Db) countOne(query string, args ...any) (int, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return 0, err
	}
	defer d.pool.Put(conn)

	var count int
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = int(stmt.ColumnInt64(0))
			return nil
		},
		Args: args,
	})
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return count, nil
}

// deleteOne runs a single-row delete and maps zero affected rows to
// db.ErrNotFound.
func (d *Db) deleteOne(query string, args ...any) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}
	return nil
}
