package zombiezen

import (
	"errors"
	"testing"

	"github.com/pamcare/pamcare/db"
)

func TestMedicationLifecycle(t *testing.T) {
	testDB := newTestDB(t)

	medication, err := testDB.CreateMedication(db.Medication{
		Name:        "Paracetamol",
		Description: "Pain reliever and fever reducer",
		Dosage:      "500mg every 6 hours",
	})
	if err != nil {
		t.Fatalf("CreateMedication failed: %v", err)
	}
	if _, err := testDB.CreateMedication(db.Medication{
		Name:        "Ibuprofen",
		Description: "Anti-inflammatory",
	}); err != nil {
		t.Fatalf("CreateMedication failed: %v", err)
	}

	t.Run("GetById", func(t *testing.T) {
		fetched, err := testDB.GetMedicationById(medication.ID)
		if err != nil {
			t.Fatalf("GetMedicationById failed: %v", err)
		}
		if fetched == nil || fetched.Name != "Paracetamol" {
			t.Errorf("GetMedicationById returned %+v", fetched)
		}
	})

	t.Run("ListOrderedByName", func(t *testing.T) {
		list, err := testDB.ListMedications(db.Pagination{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("ListMedications failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 medications, got %d", len(list))
		}
		if list[0].Name != "Ibuprofen" {
			t.Errorf("expected Ibuprofen first, got %q", list[0].Name)
		}
		count, err := testDB.CountMedications()
		if err != nil {
			t.Fatalf("CountMedications failed: %v", err)
		}
		if count != 2 {
			t.Errorf("CountMedications = %d, want 2", count)
		}
	})

	t.Run("Update", func(t *testing.T) {
		medication.Dosage = "1000mg max"
		updated, err := testDB.UpdateMedication(*medication)
		if err != nil {
			t.Fatalf("UpdateMedication failed: %v", err)
		}
		if updated.Dosage != "1000mg max" {
			t.Errorf("UpdateMedication returned %+v", updated)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := testDB.DeleteMedication(medication.ID); err != nil {
			t.Fatalf("DeleteMedication failed: %v", err)
		}
		if err := testDB.DeleteMedication(medication.ID); !errors.Is(err, db.ErrNotFound) {
			t.Errorf("second DeleteMedication error = %v, want ErrNotFound", err)
		}
	})
}

func TestSearchMedications(t *testing.T) {
	testDB := newTestDB(t)

	seed := []db.Medication{
		{Name: "Amoxicillin", Description: "Antibiotic for bacterial infections"},
		{Name: "Paracetamol", Description: "Pain reliever"},
		{Name: "Aspirin", Description: "Pain reliever, blood thinner"},
	}
	for _, m := range seed {
		if _, err := testDB.CreateMedication(m); err != nil {
			t.Fatalf("CreateMedication failed: %v", err)
		}
	}

	testCases := []struct {
		name  string
		query string
		want  int
	}{
		{"match name", "amox", 1},
		{"match description", "pain", 2},
		{"no match", "zzz", 0},
		{"wildcard is literal", "%", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := testDB.SearchMedications(tc.query, db.Pagination{Page: 1, Limit: 10})
			if err != nil {
				t.Fatalf("SearchMedications failed: %v", err)
			}
			if len(results) != tc.want {
				t.Errorf("SearchMedications(%q) returned %d rows, want %d", tc.query, len(results), tc.want)
			}
			count, err := testDB.CountMedicationSearch(tc.query)
			if err != nil {
				t.Fatalf("CountMedicationSearch failed: %v", err)
			}
			if count != tc.want {
				t.Errorf("CountMedicationSearch(%q) = %d, want %d", tc.query, count, tc.want)
			}
		})
	}
}
