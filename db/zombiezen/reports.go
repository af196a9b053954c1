package zombiezen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pamcare/pamcare/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const reportColumns = `id, user_id, title, description, report_type, file_url, report_date, created, updated`

func newReportFromStmt(stmt *sqlite.Stmt) (*db.Report, error) {
	reportDate, err := db.TimeParse(stmt.GetText("report_date"))
	if err != nil {
		return nil, fmt.Errorf("error parsing report_date time: %w", err)
	}

	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Report{
		ID:          stmt.GetText("id"),
		UserID:      stmt.GetText("user_id"),
		Title:       stmt.GetText("title"),
		Description: stmt.GetText("description"),
		ReportType:  stmt.GetText("report_type"),
		FileURL:     stmt.GetText("file_url"),
		ReportDate:  reportDate,
		Created:     created,
		Updated:     updated,
	}, nil
}

func (d *Db) CreateReport(r db.Report) (*db.Report, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	var created db.Report
	err = sqlitex.Execute(conn,
		`INSERT INTO reports (id, user_id, title, description, report_type, file_url, report_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+reportColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempReport, err := newReportFromStmt(stmt)
				if err == nil && tempReport != nil {
					created = *tempReport
				}
				return err
			},
			Args: []any{r.ID, r.UserID, r.Title, r.Description, r.ReportType, r.FileURL, db.TimeFormat(r.ReportDate)},
		})

	if err != nil {
		return nil, fmt.Errorf("report insert failed: %w", err)
	}

	return &created, nil
}

// GetReportById returns nil, nil when absent.
func (d *Db) GetReportById(id string) (*db.Report, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var report *db.Report
	err = sqlitex.Execute(conn,
		`SELECT `+reportColumns+` FROM reports WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				report, err = newReportFromStmt(stmt)
				return err
			},
			Args: []any{id},
		})

	if err != nil {
		return nil, err
	}

	return report, nil
}

func (d *Db) ListReports(userID string, p db.Pagination) ([]*db.Report, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	reports := []*db.Report{}
	err = sqlitex.Execute(conn,
		`SELECT `+reportColumns+`
		FROM reports
		WHERE user_id = ?
		ORDER BY report_date DESC
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				report, err := newReportFromStmt(stmt)
				if err != nil {
					return err
				}
				reports = append(reports, report)
				return nil
			},
			Args: []any{userID, p.Limit, p.Offset()},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return reports, nil
}

func (d *Db) CountReports(userID string) (int, error) {
	return d.countOne(`SELECT COUNT(*) FROM reports WHERE user_id = ?`, userID)
}

func (d *Db) UpdateReport(r db.Report) (*db.Report, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var updated *db.Report
	err = sqlitex.Execute(conn,
		`UPDATE reports
		SET title = ?,
			description = ?,
			report_type = ?,
			file_url = ?,
			report_date = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?
		RETURNING `+reportColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				updated, err = newReportFromStmt(stmt)
				return err
			},
			Args: []any{r.Title, r.Description, r.ReportType, r.FileURL, db.TimeFormat(r.ReportDate), r.ID},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}
	if updated == nil {
		return nil, db.ErrNotFound
	}
	return updated, nil
}

func (d *Db) DeleteReport(id string) error {
	return d.deleteOne(`DELETE FROM reports WHERE id = ?`, id)
}
