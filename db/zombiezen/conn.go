package zombiezen

import (
	"fmt"

	"zombiezen.com/go/sqlite"
)

// NewConn opens a single standalone connection, used by maintenance jobs
// that must not compete with the shared pool (backups).
func NewConn(dbPath string) (*sqlite.Conn, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=off", dbPath)

	conn, err := sqlite.OpenConn(dsn, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	return conn, nil
}
