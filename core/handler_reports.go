package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pamcare/pamcare/blobstore"
	"github.com/pamcare/pamcare/db"
)

type reportResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ReportType  string    `json:"report_type,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`
	ReportDate  time.Time `json:"report_date"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

func toReportResponse(r *db.Report) reportResponse {
	return reportResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ReportType:  r.ReportType,
		FileURL:     r.FileURL,
		ReportDate:  r.ReportDate,
		Created:     r.Created,
		Updated:     r.Updated,
	}
}

// ownedReport loads a report and enforces ownership: 404 for absent rows,
// 403 for rows owned by another user.
func (a *App) ownedReport(w http.ResponseWriter, r *http.Request, userID string) *db.Report {
	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorInvalidRequest)
		return nil
	}

	report, err := a.DbReports().GetReportById(id)
	if err != nil {
		a.Logger().Error("report lookup failed", "error", err, "id", id)
		writeJsonError(w, errorDatabaseError)
		return nil
	}
	if report == nil {
		writeJsonError(w, errorNotFound)
		return nil
	}
	if report.UserID != userID {
		writeJsonError(w, errorForbidden)
		return nil
	}
	return report
}

// CreateReportHandler creates a report row without a file attachment.
// Endpoint: POST /api/reports
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		ReportType  string    `json:"report_type"`
		ReportDate  time.Time `json:"report_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if req.ReportDate.IsZero() {
		req.ReportDate = time.Now()
	}

	report, err := a.DbReports().CreateReport(db.Report{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		ReportType:  req.ReportType,
		ReportDate:  req.ReportDate,
	})
	if err != nil {
		a.Logger().Error("report insert failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusCreated,
			Code:    CodeOkCreated,
			Message: "Report created",
		},
		Data: toReportResponse(report),
	})
}

// UploadReportHandler creates a report from a multipart form with a file.
// The file lands in object storage and the row stores its public URL.
// Endpoint: POST /api/reports/upload
// Authenticated: Yes
// Allowed Mimetype: multipart/form-data
func (a *App) UploadReportHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeMultipart); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	fileURL, ok := a.uploadFormFile(w, r, "file", blobstore.PrefixReports)
	if !ok {
		return
	}
	if fileURL == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	reportDate := time.Now()
	if v := r.FormValue("report_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJsonError(w, errorInvalidRequest)
			return
		}
		reportDate = parsed
	}

	report, err := a.DbReports().CreateReport(db.Report{
		UserID:      user.ID,
		Title:       title,
		Description: r.FormValue("description"),
		ReportType:  r.FormValue("report_type"),
		FileURL:     fileURL,
		ReportDate:  reportDate,
	})
	if err != nil {
		a.Logger().Error("report insert failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusCreated,
			Code:    CodeOkUploaded,
			Message: "Report uploaded",
		},
		Data: toReportResponse(report),
	})
}

// ListReportsHandler returns the current user's reports, paginated. The page
// and the total count run concurrently.
// Endpoint: GET /api/reports
// Authenticated: Yes
func (a *App) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	p := paginationFromRequest(r)

	var (
		reports []*db.Report
		total   int
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		reports, err = a.DbReports().ListReports(user.ID, p)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = a.DbReports().CountReports(user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		a.Logger().Error("report list failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	items := make([]reportResponse, 0, len(reports))
	for _, report := range reports {
		items = append(items, toReportResponse(report))
	}

	writeJsonList(w, CodeOkList, "Reports", items, ListMeta{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// GetReportHandler returns one report owned by the current user.
// Endpoint: GET /api/reports/{id}
// Authenticated: Yes
func (a *App) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	report := a.ownedReport(w, r, user.ID)
	if report == nil {
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkFound,
			Message: "Report",
		},
		Data: toReportResponse(report),
	})
}

// UpdateReportHandler partially updates a report.
// Endpoint: PATCH /api/reports/{id}
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdateReportHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	report := a.ownedReport(w, r, user.ID)
	if report == nil {
		return
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		ReportType  *string    `json:"report_type"`
		ReportDate  *time.Time `json:"report_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Title != nil {
		report.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		report.Description = *req.Description
	}
	if req.ReportType != nil {
		report.ReportType = *req.ReportType
	}
	if req.ReportDate != nil {
		report.ReportDate = *req.ReportDate
	}
	if report.Title == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	stored, err := a.DbReports().UpdateReport(*report)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		a.Logger().Error("report update failed", "error", err, "id", report.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkUpdated,
			Message: "Report updated",
		},
		Data: toReportResponse(stored),
	})
}

// DeleteReportHandler removes a report.
// Endpoint: DELETE /api/reports/{id}
// Authenticated: Yes
func (a *App) DeleteReportHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	report := a.ownedReport(w, r, user.ID)
	if report == nil {
		return
	}

	if err := a.DbReports().DeleteReport(report.ID); err != nil {
		a.Logger().Error("report delete failed", "error", err, "id", report.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonOk(w, okDeleted)
}
