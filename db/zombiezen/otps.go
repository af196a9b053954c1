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

const otpColumns = `id, email, code_hash, expires_at, verified, created`

func newOtpFromStmt(stmt *sqlite.Stmt) (*db.OtpCode, error) {
	expiresAt, err := db.TimeParse(stmt.GetText("expires_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing expires_at time: %w", err)
	}

	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	return &db.OtpCode{
		ID:        stmt.GetText("id"),
		Email:     stmt.GetText("email"),
		CodeHash:  stmt.GetText("code_hash"),
		ExpiresAt: expiresAt,
		Verified:  stmt.GetInt64("verified") != 0,
		Created:   created,
	}, nil
}

func (d *Db) CreateOtp(otp db.OtpCode) (*db.OtpCode, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if otp.ID == "" {
		otp.ID = uuid.NewString()
	}

	var created db.OtpCode
	err = sqlitex.Execute(conn,
		`INSERT INTO otp_codes (id, email, code_hash, expires_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+otpColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempOtp, err := newOtpFromStmt(stmt)
				if err == nil && tempOtp != nil {
					created = *tempOtp
				}
				return err
			},
			Args: []any{otp.ID, otp.Email, otp.CodeHash, db.TimeFormat(otp.ExpiresAt)},
		})

	if err != nil {
		return nil, fmt.Errorf("otp insert failed: %w", err)
	}

	return &created, nil
}

// GetLatestOtp returns the newest code row for the email in the given
// verified state. Returns nil, nil when no such row exists.
func (d *Db) GetLatestOtp(email string, verified bool) (*db.OtpCode, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var otp *db.OtpCode
	err = sqlitex.Execute(conn,
		`SELECT `+otpColumns+`
		FROM otp_codes
		WHERE email = ? AND verified = ?
		ORDER BY rowid DESC
		LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				otp, err = newOtpFromStmt(stmt)
				return err
			},
			Args: []any{email, verified},
		})

	if err != nil {
		return nil, err
	}

	return otp, nil
}

func (d *Db) MarkOtpVerified(id string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE otp_codes SET verified = TRUE WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
		})
	if err != nil {
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (d *Db) DeleteUnverifiedOtps(email string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM otp_codes WHERE email = ? AND verified = FALSE`,
		&sqlitex.ExecOptions{
			Args: []any{email},
		})
	if err != nil {
		return fmt.Errorf("failed to delete unverified otps: %w", err)
	}
	return nil
}

func (d *Db) DeleteOtps(email string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM otp_codes WHERE email = ?`,
		&sqlitex.ExecOptions{
			Args: []any{email},
		})
	if err != nil {
		return fmt.Errorf("failed to delete otps: %w", err)
	}
	return nil
}

// DeleteExpiredOtps removes code rows whose expiry is before the given time
// and returns the number of rows removed.
func (d *Db) DeleteExpiredOtps(before time.Time) (int64, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return 0, err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM otp_codes WHERE expires_at < ?`,
		&sqlitex.ExecOptions{
			Args: []any{db.TimeFormat(before)},
		})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return int64(conn.Changes()), nil
}
