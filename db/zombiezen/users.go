package zombiezen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pamcare/pamcare/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const userColumns = `id, email, password, first_name, last_name, avatar, google_id, verified, created, updated`

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.User{
		ID:        stmt.GetText("id"),
		Email:     stmt.GetText("email"),
		Password:  stmt.GetText("password"),
		FirstName: stmt.GetText("first_name"),
		LastName:  stmt.GetText("last_name"),
		Avatar:    stmt.GetText("avatar"),
		GoogleID:  stmt.GetText("google_id"),
		Verified:  stmt.GetInt64("verified") != 0,
		Created:   created,
		Updated:   updated,
	}, nil
}

// getUserBy runs a single-row select with one argument and returns the user,
// nil when no row matched.
func (d *Db) getUserBy(where string, arg any) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User // Will remain nil if no rows found
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE `+where+` LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []any{arg},
		})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email address.
// Returns:
// - *db.User: User record if found, nil if no matching record exists
// - returned time fields are in UTC, RFC3339
// - error: Only returned for database errors, nil on successful query (even if no results)
func (d *Db) GetUserByEmail(email string) (*db.User, error) {
	return d.getUserBy("email = ?", email)
}

func (d *Db) GetUserById(id string) (*db.User, error) {
	return d.getUserBy("id = ?", id)
}

func (d *Db) GetUserByGoogleId(googleID string) (*db.User, error) {
	if googleID == "" {
		return nil, nil
	}
	return d.getUserBy("google_id = ?", googleID)
}

// CreateUser inserts a new user row. A duplicate email maps to
// db.ErrConstraintUnique so callers can answer with a conflict instead of a
// generic failure.
func (d *Db) CreateUser(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	var createdUser db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, password, first_name, last_name, avatar, google_id, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempUser, err := newUserFromStmt(stmt)
				if err == nil && tempUser != nil {
					createdUser = *tempUser
				}
				return err
			},
			Args: []any{
				user.ID,
				user.Email,
				user.Password,
				user.FirstName,
				user.LastName,
				user.Avatar,
				user.GoogleID,
				user.Verified,
			},
		})

	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return nil, db.ErrConstraintUnique
		}
		return nil, fmt.Errorf("user insert failed: %w", err)
	}

	return &createdUser, nil
}

// CreateUserWithOauth2 inserts a new verified user or, when the email is
// already registered, backfills google_id and flips verified. A password
// account that later signs in with Google keeps its password.
func (d *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	var createdUser db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, password, first_name, last_name, avatar, google_id, verified)
		VALUES (?, ?, '', ?, ?, ?, ?, TRUE)
		ON CONFLICT(email) DO UPDATE SET
			google_id = excluded.google_id,
			verified = TRUE,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempUser, err := newUserFromStmt(stmt)
				if err == nil && tempUser != nil {
					createdUser = *tempUser
				}
				return err
			},
			Args: []any{
				user.ID,
				user.Email,
				user.FirstName,
				user.LastName,
				user.Avatar,
				user.GoogleID,
			},
		})

	if err != nil {
		return nil, fmt.Errorf("oauth2 user upsert failed: %w", err)
	}

	return &createdUser, nil
}

func (d *Db) VerifyEmail(userID string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET verified = TRUE,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{userID},
		})
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}
	return nil
}

// UpdateUser updates the mutable profile fields and returns the stored row.
func (d *Db) UpdateUser(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var updatedUser *db.User
	err = sqlitex.Execute(conn,
		`UPDATE users
		SET first_name = ?,
			last_name = ?,
			avatar = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				updatedUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []any{user.FirstName, user.LastName, user.Avatar, user.ID},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if updatedUser == nil {
		return nil, db.ErrNotFound
	}
	return updatedUser, nil
}

func (d *Db) UpdateAvatar(userID string, url string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET avatar = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{url, userID},
		})
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}
	return nil
}
