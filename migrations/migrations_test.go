package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestSchemaContainsAppTables(t *testing.T) {
	schemaFS := Schema()

	wantFiles := []string{
		"app/users.sql",
		"app/otp_codes.sql",
		"app/appointments.sql",
		"app/reports.sql",
		"app/medications.sql",
		"app/chat.sql",
		"app/job_queue.sql",
	}

	for _, name := range wantFiles {
		data, err := fs.ReadFile(schemaFS, name)
		if err != nil {
			t.Errorf("Schema() missing %s: %v", name, err)
			continue
		}
		if !strings.Contains(string(data), "CREATE TABLE") {
			t.Errorf("%s contains no CREATE TABLE statement", name)
		}
	}
}
