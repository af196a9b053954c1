package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
	"github.com/pamcare/pamcare/trending"
)

func TestGetMedicationHandler_CachesReads(t *testing.T) {
	lookups := 0
	mockDb := &mock.Db{
		GetMedicationByIdFunc: func(id string) (*db.Medication, error) {
			lookups++
			return &db.Medication{ID: id, Name: "Ibuprofen"}, nil
		},
	}
	app, _ := newTestApp(t, mockDb)
	app.SetMedCache(newMapCache[*db.Medication]())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/pharmacy/med1", nil)
		req.SetPathValue("id", "med1")
		rr := httptest.NewRecorder()
		app.GetMedicationHandler(rr, req)
		assertResponse(t, rr, http.StatusOK, CodeOkFound)
	}

	if lookups != 1 {
		t.Errorf("expected a single database lookup, got %d", lookups)
	}
}

func TestUpdateMedicationHandler_InvalidatesCache(t *testing.T) {
	name := "Ibuprofen"
	mockDb := &mock.Db{
		GetMedicationByIdFunc: func(id string) (*db.Medication, error) {
			return &db.Medication{ID: id, Name: name}, nil
		},
		UpdateMedicationFunc: func(m db.Medication) (*db.Medication, error) {
			name = m.Name
			return &m, nil
		},
	}
	app, _ := newTestApp(t, mockDb)
	app.SetMedCache(newMapCache[*db.Medication]())

	// Prime the cache.
	req := httptest.NewRequest("GET", "/api/pharmacy/med1", nil)
	req.SetPathValue("id", "med1")
	rr := httptest.NewRecorder()
	app.GetMedicationHandler(rr, req)
	assertResponse(t, rr, http.StatusOK, CodeOkFound)

	// Update drops the cached copy.
	req = authedRequest("PATCH", "/api/pharmacy/med1", `{"name":"Naproxen"}`, &db.User{ID: "u1"})
	req.SetPathValue("id", "med1")
	rr = httptest.NewRecorder()
	app.UpdateMedicationHandler(rr, req)
	assertResponse(t, rr, http.StatusOK, CodeOkUpdated)

	// The next read sees the new name, not the cached one.
	req = httptest.NewRequest("GET", "/api/pharmacy/med1", nil)
	req.SetPathValue("id", "med1")
	rr = httptest.NewRecorder()
	app.GetMedicationHandler(rr, req)
	body := assertResponse(t, rr, http.StatusOK, CodeOkFound)

	data, _ := body["data"].(map[string]interface{})
	if data["name"] != "Naproxen" {
		t.Errorf("stale cache served after update: %v", data["name"])
	}
}

func TestGetMedicationHandler_NotFound(t *testing.T) {
	app, _ := newTestApp(t, &mock.Db{})

	req := httptest.NewRequest("GET", "/api/pharmacy/missing", nil)
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()

	app.GetMedicationHandler(rr, req)
	assertResponse(t, rr, http.StatusNotFound, CodeErrorNotFound)
}

func TestListMedicationsHandler_SearchFeedsTrending(t *testing.T) {
	var gotQuery string
	mockDb := &mock.Db{
		SearchMedicationsFunc: func(query string, p db.Pagination) ([]*db.Medication, error) {
			gotQuery = query
			return []*db.Medication{{ID: "m1", Name: "Aspirin"}}, nil
		},
		CountMedicationSearchFunc: func(query string) (int, error) {
			return 1, nil
		},
	}
	app, _ := newTestApp(t, mockDb)
	app.trending = trending.New(5, 1000)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/pharmacy?search=Aspirin", nil)
		rr := httptest.NewRecorder()
		app.ListMedicationsHandler(rr, req)
		assertResponse(t, rr, http.StatusOK, CodeOkList)
	}

	if gotQuery != "Aspirin" {
		t.Errorf("search query not forwarded: %q", gotQuery)
	}

	req := httptest.NewRequest("GET", "/api/pharmacy/trending", nil)
	rr := httptest.NewRecorder()
	app.TrendingMedicationsHandler(rr, req)
	body := assertResponse(t, rr, http.StatusOK, CodeOkTrending)

	data, _ := body["data"].(map[string]interface{})
	terms, _ := data["terms"].([]interface{})
	if len(terms) != 1 || terms[0] != "aspirin" {
		t.Errorf("expected trending [aspirin], got %v", terms)
	}
}

func TestTrendingMedicationsHandler_EmptyWithoutSketch(t *testing.T) {
	app, _ := newTestApp(t, &mock.Db{})

	req := httptest.NewRequest("GET", "/api/pharmacy/trending", nil)
	rr := httptest.NewRecorder()
	app.TrendingMedicationsHandler(rr, req)
	body := assertResponse(t, rr, http.StatusOK, CodeOkTrending)

	data, _ := body["data"].(map[string]interface{})
	terms, _ := data["terms"].([]interface{})
	if len(terms) != 0 {
		t.Errorf("expected no terms, got %v", terms)
	}
}
