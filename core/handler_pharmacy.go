package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pamcare/pamcare/db"
)

type medicationResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Dosage            string    `json:"dosage,omitempty"`
	SideEffects       string    `json:"side_effects,omitempty"`
	Indications       string    `json:"indications,omitempty"`
	Contraindications string    `json:"contraindications,omitempty"`
	Created           time.Time `json:"created"`
	Updated           time.Time `json:"updated"`
}

func toMedicationResponse(m *db.Medication) medicationResponse {
	return medicationResponse{
		ID:                m.ID,
		Name:              m.Name,
		Description:       m.Description,
		Dosage:            m.Dosage,
		SideEffects:       m.SideEffects,
		Indications:       m.Indications,
		Contraindications: m.Contraindications,
		Created:           m.Created,
		Updated:           m.Updated,
	}
}

// medicationRequest is shared by create and update.
type medicationRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Dosage            string `json:"dosage"`
	SideEffects       string `json:"side_effects"`
	Indications       string `json:"indications"`
	Contraindications string `json:"contraindications"`
}

// CreateMedicationHandler adds a medication to the catalog.
// Endpoint: POST /api/pharmacy
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) CreateMedicationHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	med, err := a.DbPharmacy().CreateMedication(db.Medication{
		Name:              req.Name,
		Description:       req.Description,
		Dosage:            req.Dosage,
		SideEffects:       req.SideEffects,
		Indications:       req.Indications,
		Contraindications: req.Contraindications,
	})
	if err != nil {
		a.Logger().Error("medication insert failed", "error", err)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusCreated,
			Code:    CodeOkCreated,
			Message: "Medication created",
		},
		Data: toMedicationResponse(med),
	})
}

// ListMedicationsHandler lists or searches the catalog. With a search query
// the term also feeds the trending sketch; the page and the count run
// concurrently either way.
// Endpoint: GET /api/pharmacy?search=
// Authenticated: Yes
func (a *App) ListMedicationsHandler(w http.ResponseWriter, r *http.Request) {
	p := paginationFromRequest(r)
	query := strings.TrimSpace(r.URL.Query().Get("search"))

	var (
		meds  []*db.Medication
		total int
	)
	g := new(errgroup.Group)
	if query == "" {
		g.Go(func() error {
			var err error
			meds, err = a.DbPharmacy().ListMedications(p)
			return err
		})
		g.Go(func() error {
			var err error
			total, err = a.DbPharmacy().CountMedications()
			return err
		})
	} else {
		g.Go(func() error {
			var err error
			meds, err = a.DbPharmacy().SearchMedications(query, p)
			return err
		})
		g.Go(func() error {
			var err error
			total, err = a.DbPharmacy().CountMedicationSearch(query)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		a.Logger().Error("medication list failed", "error", err, "query", query)
		writeJsonError(w, errorDatabaseError)
		return
	}

	if query != "" && a.Trending() != nil {
		a.Trending().Hit(strings.ToLower(query))
	}

	items := make([]medicationResponse, 0, len(meds))
	for _, med := range meds {
		items = append(items, toMedicationResponse(med))
	}

	writeJsonList(w, CodeOkList, "Medications", items, ListMeta{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// GetMedicationHandler returns one medication. Reads go through the in
// process cache; misses load from the database and populate it.
// Endpoint: GET /api/pharmacy/{id}
// Authenticated: Yes
func (a *App) GetMedicationHandler(w http.ResponseWriter, r *http.Request) {
	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	med, ok := a.cachedMedication(id)
	if !ok {
		var err error
		med, err = a.DbPharmacy().GetMedicationById(id)
		if err != nil {
			a.Logger().Error("medication lookup failed", "error", err, "id", id)
			writeJsonError(w, errorDatabaseError)
			return
		}
		if med != nil && a.MedCache() != nil {
			a.MedCache().SetWithTTL(id, med, 1, a.Config().Cache.MedicationTTL.Duration)
		}
	}
	if med == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkFound,
			Message: "Medication",
		},
		Data: toMedicationResponse(med),
	})
}

func (a *App) cachedMedication(id string) (*db.Medication, bool) {
	if a.MedCache() == nil {
		return nil, false
	}
	return a.MedCache().Get(id)
}

// UpdateMedicationHandler updates a catalog entry and drops its cached copy.
// Endpoint: PATCH /api/pharmacy/{id}
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdateMedicationHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	med, err := a.DbPharmacy().GetMedicationById(id)
	if err != nil {
		a.Logger().Error("medication lookup failed", "error", err, "id", id)
		writeJsonError(w, errorDatabaseError)
		return
	}
	if med == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	var req struct {
		Name              *string `json:"name"`
		Description       *string `json:"description"`
		Dosage            *string `json:"dosage"`
		SideEffects       *string `json:"side_effects"`
		Indications       *string `json:"indications"`
		Contraindications *string `json:"contraindications"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Name != nil {
		med.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		med.Description = *req.Description
	}
	if req.Dosage != nil {
		med.Dosage = *req.Dosage
	}
	if req.SideEffects != nil {
		med.SideEffects = *req.SideEffects
	}
	if req.Indications != nil {
		med.Indications = *req.Indications
	}
	if req.Contraindications != nil {
		med.Contraindications = *req.Contraindications
	}
	if med.Name == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	stored, err := a.DbPharmacy().UpdateMedication(*med)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		a.Logger().Error("medication update failed", "error", err, "id", id)
		writeJsonError(w, errorDatabaseError)
		return
	}

	if a.MedCache() != nil {
		a.MedCache().Del(id)
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkUpdated,
			Message: "Medication updated",
		},
		Data: toMedicationResponse(stored),
	})
}

// DeleteMedicationHandler removes a catalog entry and its cached copy.
// Endpoint: DELETE /api/pharmacy/{id}
// Authenticated: Yes
func (a *App) DeleteMedicationHandler(w http.ResponseWriter, r *http.Request) {
	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if err := a.DbPharmacy().DeleteMedication(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		a.Logger().Error("medication delete failed", "error", err, "id", id)
		writeJsonError(w, errorDatabaseError)
		return
	}

	if a.MedCache() != nil {
		a.MedCache().Del(id)
	}

	writeJsonOk(w, okDeleted)
}

// TrendingMedicationsHandler returns the currently most searched terms.
// Endpoint: GET /api/pharmacy/trending
// Authenticated: Yes
func (a *App) TrendingMedicationsHandler(w http.ResponseWriter, r *http.Request) {
	terms := []string{}
	if a.Trending() != nil {
		terms = a.Trending().Top()
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkTrending,
			Message: "Trending searches",
		},
		Data: map[string][]string{"terms": terms},
	})
}
