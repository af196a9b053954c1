package zombiezen

import (
	"fmt"

	"github.com/pamcare/pamcare/db"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Db struct {
	pool *sqlitex.Pool
}

// Verify interface implementations
var _ db.DbAuth = (*Db)(nil)
var _ db.DbOtp = (*Db)(nil)
var _ db.DbAppointments = (*Db)(nil)
var _ db.DbReports = (*Db)(nil)
var _ db.DbPharmacy = (*Db)(nil)
var _ db.DbChat = (*Db)(nil)
var _ db.DbQueue = (*Db)(nil)
var _ db.DbApp = (*Db)(nil)

// New creates a new Db instance using an existing pool provided by the user.
// The lifecycle of the provided pool (*sqlitex.Pool) is managed externally;
// this Db type does not close the pool.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}
