package router

import "net/http"

// Router registers handlers under "METHOD /path" patterns. Path parameters
// use the {name} syntax and are read back with Param.
type Router interface {
	http.Handler

	Handle(pattern string, handler http.Handler)
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))

	// Register mounts a set of routes built with NewRoute.
	Register(routes ...*Route)

	// Param returns the value of a named path parameter for a request that
	// was dispatched by this router, or "" when absent.
	Param(req *http.Request, key string) string
}
