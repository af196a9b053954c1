package zombiezen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pamcare/pamcare/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const medicationColumns = `id, name, description, dosage, side_effects, indications, contraindications, created, updated`

func newMedicationFromStmt(stmt *sqlite.Stmt) (*db.Medication, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Medication{
		ID:                stmt.GetText("id"),
		Name:              stmt.GetText("name"),
		Description:       stmt.GetText("description"),
		Dosage:            stmt.GetText("dosage"),
		SideEffects:       stmt.GetText("side_effects"),
		Indications:       stmt.GetText("indications"),
		Contraindications: stmt.GetText("contraindications"),
		Created:           created,
		Updated:           updated,
	}, nil
}

// likePattern escapes LIKE wildcards in user input and wraps the term for a
// substring match.
func likePattern(query string) string {
	escaped := ""
	for _, r := range query {
		if r == '%' || r == '_' || r == '\\' {
			escaped += `\`
		}
		escaped += string(r)
	}
	return "%" + escaped + "%"
}

func (d *Db) CreateMedication(m db.Medication) (*db.Medication, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	var created db.Medication
	err = sqlitex.Execute(conn,
		`INSERT INTO medications (id, name, description, dosage, side_effects, indications, contraindications)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+medicationColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempMed, err := newMedicationFromStmt(stmt)
				if err == nil && tempMed != nil {
					created = *tempMed
				}
				return err
			},
			Args: []any{m.ID, m.Name, m.Description, m.Dosage, m.SideEffects, m.Indications, m.Contraindications},
		})

	if err != nil {
		return nil, fmt.Errorf("medication insert failed: %w", err)
	}

	return &created, nil
}

// GetMedicationById returns nil, nil when absent.
func (d *Db) GetMedicationById(id string) (*db.Medication, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var medication *db.Medication
	err = sqlitex.Execute(conn,
		`SELECT `+medicationColumns+` FROM medications WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				medication, err = newMedicationFromStmt(stmt)
				return err
			},
			Args: []any{id},
		})

	if err != nil {
		return nil, err
	}

	return medication, nil
}

func (d *Db) ListMedications(p db.Pagination) ([]*db.Medication, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	medications := []*db.Medication{}
	err = sqlitex.Execute(conn,
		`SELECT `+medicationColumns+`
		FROM medications
		ORDER BY name ASC
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				medication, err := newMedicationFromStmt(stmt)
				if err != nil {
					return err
				}
				medications = append(medications, medication)
				return nil
			},
			Args: []any{p.Limit, p.Offset()},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}

	return medications, nil
}

func (d *Db) CountMedications() (int, error) {
	return d.countOne(`SELECT COUNT(*) FROM medications`)
}

// SearchMedications matches the query against name and description with a
// case insensitive substring match.
func (d *Db) SearchMedications(query string, p db.Pagination) ([]*db.Medication, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	pattern := likePattern(query)
	medications := []*db.Medication{}
	err = sqlitex.Execute(conn,
		`SELECT `+medicationColumns+`
		FROM medications
		WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		ORDER BY name ASC
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				medication, err := newMedicationFromStmt(stmt)
				if err != nil {
					return err
				}
				medications = append(medications, medication)
				return nil
			},
			Args: []any{pattern, pattern, p.Limit, p.Offset()},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to search medications: %w", err)
	}

	return medications, nil
}

func (d *Db) CountMedicationSearch(query string) (int, error) {
	pattern := likePattern(query)
	return d.countOne(
		`SELECT COUNT(*) FROM medications WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`,
		pattern, pattern)
}

func (d *Db) UpdateMedication(m db.Medication) (*db.Medication, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var updated *db.Medication
	err = sqlitex.Execute(conn,
		`UPDATE medications
		SET name = ?,
			description = ?,
			dosage = ?,
			side_effects = ?,
			indications = ?,
			contraindications = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?
		RETURNING `+medicationColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				updated, err = newMedicationFromStmt(stmt)
				return err
			},
			Args: []any{m.Name, m.Description, m.Dosage, m.SideEffects, m.Indications, m.Contraindications, m.ID},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	if updated == nil {
		return nil, db.ErrNotFound
	}
	return updated, nil
}

func (d *Db) DeleteMedication(id string) error {
	return d.deleteOne(`DELETE FROM medications WHERE id = ?`, id)
}
