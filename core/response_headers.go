package core

import (
	"net/http"
)

// HeadersJson are the default headers for API JSON responses.
var HeadersJson = map[string]string{
	"Content-Type": "application/json; charset=utf-8",

	// Ensure the browser respects the declared content type strictly.
	// mitigate MIME-type sniffing attacks.
	"X-Content-Type-Options": "nosniff",

	// The response must not be stored in any cache, anywhere.
	// no-store alone is enough; no-cache and must-revalidate are assurance
	// if something downstream misinterprets no-store.
	"Cache-Control": "no-store, no-cache, must-revalidate",

	// Prevents the response from being embedded in an <iframe>.
	"X-Frame-Options": "DENY",

	// frame-ancestors is the modern replacement for X-Frame-Options: DENY.
	// default-src 'none' asserts this response is never an active document.
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

func setHeaders(w http.ResponseWriter, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}
