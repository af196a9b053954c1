package httprouter

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pamcare/pamcare/router"
)

func TestSplitPattern(t *testing.T) {
	testCases := []struct {
		pattern    string
		wantMethod string
		wantPath   string
	}{
		{"GET /users", "GET", "/users"},
		{"POST /users/{id}/reports", "POST", "/users/:id/reports"},
		{"/plain", "GET", "/plain"},
		{"DELETE /a/{b}/c/{d}", "DELETE", "/a/:b/c/:d"},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			method, path := splitPattern(tc.pattern)
			if method != tc.wantMethod || path != tc.wantPath {
				t.Errorf("splitPattern(%q) = (%q, %q), want (%q, %q)",
					tc.pattern, method, path, tc.wantMethod, tc.wantPath)
			}
		})
	}
}

func TestRouterDispatchAndParams(t *testing.T) {
	rt := New()

	rt.Register(
		router.NewRoute("GET /medications/{id}").WithHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "medication %s", rt.Param(r, "id"))
		}),
		router.NewRoute("POST /medications").WithHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}),
	)

	t.Run("path parameter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/medications/abc123", nil)
		rr := httptest.NewRecorder()
		rt.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		if rr.Body.String() != "medication abc123" {
			t.Errorf("unexpected body: %q", rr.Body.String())
		}
	})

	t.Run("method routing", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/medications", nil)
		rr := httptest.NewRecorder()
		rt.ServeHTTP(rr, req)

		if rr.Code != http.StatusCreated {
			t.Errorf("expected status %d, got %d", http.StatusCreated, rr.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/unknown", nil)
		rr := httptest.NewRecorder()
		rt.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
	})
}
