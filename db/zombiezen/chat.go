package zombiezen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pamcare/pamcare/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const chatSessionColumns = `id, user_id, title, created, updated`
const chatMessageColumns = `id, session_id, role, content, created`

func newChatSessionFromStmt(stmt *sqlite.Stmt) (*db.ChatSession, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.ChatSession{
		ID:      stmt.GetText("id"),
		UserID:  stmt.GetText("user_id"),
		Title:   stmt.GetText("title"),
		Created: created,
		Updated: updated,
	}, nil
}

func newChatMessageFromStmt(stmt *sqlite.Stmt) (*db.ChatMessage, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	return &db.ChatMessage{
		ID:        stmt.GetText("id"),
		SessionID: stmt.GetText("session_id"),
		Role:      stmt.GetText("role"),
		Content:   stmt.GetText("content"),
		Created:   created,
	}, nil
}

func (d *Db) CreateChatSession(s db.ChatSession) (*db.ChatSession, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	var created db.ChatSession
	err = sqlitex.Execute(conn,
		`INSERT INTO chat_sessions (id, user_id, title)
		VALUES (?, ?, ?)
		RETURNING `+chatSessionColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempSession, err := newChatSessionFromStmt(stmt)
				if err == nil && tempSession != nil {
					created = *tempSession
				}
				return err
			},
			Args: []any{s.ID, s.UserID, s.Title},
		})

	if err != nil {
		return nil, fmt.Errorf("chat session insert failed: %w", err)
	}

	return &created, nil
}

// GetChatSessionById returns nil, nil when absent.
func (d *Db) GetChatSessionById(id string) (*db.ChatSession, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var session *db.ChatSession
	err = sqlitex.Execute(conn,
		`SELECT `+chatSessionColumns+` FROM chat_sessions WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				session, err = newChatSessionFromStmt(stmt)
				return err
			},
			Args: []any{id},
		})

	if err != nil {
		return nil, err
	}

	return session, nil
}

func (d *Db) ListChatSessions(userID string, p db.Pagination) ([]*db.ChatSession, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	sessions := []*db.ChatSession{}
	err = sqlitex.Execute(conn,
		`SELECT `+chatSessionColumns+`
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY updated DESC
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				session, err := newChatSessionFromStmt(stmt)
				if err != nil {
					return err
				}
				sessions = append(sessions, session)
				return nil
			},
			Args: []any{userID, p.Limit, p.Offset()},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}

	return sessions, nil
}

func (d *Db) CountChatSessions(userID string) (int, error) {
	return d.countOne(`SELECT COUNT(*) FROM chat_sessions WHERE user_id = ?`, userID)
}

// DeleteChatSession removes the session and its messages.
func (d *Db) DeleteChatSession(id string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	// Messages first: foreign keys may be off on a plain connection.
	err = sqlitex.Execute(conn,
		`DELETE FROM chat_messages WHERE session_id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}

	err = sqlitex.Execute(conn,
		`DELETE FROM chat_sessions WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (d *Db) TouchChatSession(id string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE chat_sessions
		SET updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("failed to touch chat session: %w", err)
	}
	return nil
}

func (d *Db) CreateChatMessage(m db.ChatMessage) (*db.ChatMessage, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	var created db.ChatMessage
	err = sqlitex.Execute(conn,
		`INSERT INTO chat_messages (id, session_id, role, content)
		VALUES (?, ?, ?, ?)
		RETURNING `+chatMessageColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempMessage, err := newChatMessageFromStmt(stmt)
				if err == nil && tempMessage != nil {
					created = *tempMessage
				}
				return err
			},
			Args: []any{m.ID, m.SessionID, m.Role, m.Content},
		})

	if err != nil {
		return nil, fmt.Errorf("chat message insert failed: %w", err)
	}

	return &created, nil
}

// ListChatMessages returns up to limit of the most recent messages in a
// session, oldest first.
func (d *Db) ListChatMessages(sessionID string, limit int) ([]*db.ChatMessage, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	messages := []*db.ChatMessage{}
	err = sqlitex.Execute(conn,
		`SELECT `+chatMessageColumns+` FROM (
			SELECT rowid AS rid, `+chatMessageColumns+`
			FROM chat_messages
			WHERE session_id = ?
			ORDER BY rid DESC
			LIMIT ?
		)
		ORDER BY rid ASC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				message, err := newChatMessageFromStmt(stmt)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			},
			Args: []any{sessionID, limit},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	return messages, nil
}
