package router

import "net/http"

// Route pairs an endpoint pattern with its handler chain.
type Route struct {
	endpoint string
	chain    *Chain
}

// NewRoute creates a route for the given "METHOD /path" endpoint.
func NewRoute(endpoint string) *Route {
	if endpoint == "" {
		panic("route endpoint cannot be empty")
	}
	return &Route{endpoint: endpoint}
}

func (r *Route) Endpoint() string {
	return r.endpoint
}

func (r *Route) WithHandler(h http.Handler) *Route {
	r.chain = NewChain(h)
	return r
}

func (r *Route) WithHandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.WithHandler(http.HandlerFunc(f))
}

// WithMiddleware adds middlewares to the route's chain. The handler must be
// set first.
func (r *Route) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Route {
	if r.chain == nil {
		panic("route handler must be set before middleware")
	}
	r.chain.WithMiddleware(middlewares...)
	return r
}

// WithMiddlewareChain adds a slice of middlewares in the given order.
func (r *Route) WithMiddlewareChain(middlewares []func(http.Handler) http.Handler) *Route {
	return r.WithMiddleware(middlewares...)
}

// Handler returns the final handler with all middlewares applied.
func (r *Route) Handler() http.Handler {
	if r.chain == nil {
		panic("route has no handler")
	}
	return r.chain.Handler()
}
