package core

import (
	"fmt"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/pamcare/pamcare/db"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ValidateEmail checks if an email address is valid according to RFC 5322.
// Returns nil if valid, or an error describing why the email is invalid.
func ValidateEmail(email string) error {
	_, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// paginationFromRequest reads page and limit query parameters with sane
// defaults. Out-of-range values are clamped, never rejected.
func paginationFromRequest(r *http.Request) db.Pagination {
	p := db.Pagination{Page: 1, Limit: defaultPageLimit}

	if v := r.URL.Query().Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			p.Page = page
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			if limit > maxPageLimit {
				limit = maxPageLimit
			}
			p.Limit = limit
		}
	}

	return p
}
