package router_test

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	rtr "github.com/pamcare/pamcare/router"
)

func TestRouteBasicHandler(t *testing.T) {
	route := rtr.NewRoute("GET /test").
		WithHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

	if route.Endpoint() != "GET /test" {
		t.Errorf("expected endpoint 'GET /test', got %q", route.Endpoint())
	}

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()

	route.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := rec.Body.String(); body != "OK" {
		t.Errorf("expected body 'OK', got '%s'", body)
	}
}

func TestRouteMiddlewareChaining(t *testing.T) {
	var callOrder []string

	route := rtr.NewRoute("GET /test").
		WithHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callOrder = append(callOrder, "handler")
			w.WriteHeader(http.StatusOK)
		}).
		WithMiddleware(
			orderRecordingMiddleware("mw1", &callOrder),
			orderRecordingMiddleware("mw2", &callOrder),
		)

	req := httptest.NewRequest("GET", "/test", nil)
	route.Handler().ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"mw1", "mw2", "handler"}
	if !reflect.DeepEqual(callOrder, want) {
		t.Errorf("call order = %v, want %v", callOrder, want)
	}
}

func TestRouteHandlerWithoutHandlerPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic calling Handler on route without handler")
		}
	}()
	rtr.NewRoute("GET /test").Handler()
}

func TestNewRouteEmptyEndpointPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for empty endpoint")
		}
	}()
	rtr.NewRoute("")
}
