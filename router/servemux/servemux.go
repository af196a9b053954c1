package servemux

import (
	"net/http"

	"github.com/pamcare/pamcare/router"
)

// ServeMuxRouter implements router.Router using net/http ServeMux
type ServeMuxRouter struct {
	*http.ServeMux
}

func (s *ServeMuxRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.ServeMux.ServeHTTP(w, r)
}

func (s *ServeMuxRouter) Handle(pattern string, handler http.Handler) {
	s.ServeMux.Handle(pattern, handler)
}

func (s *ServeMuxRouter) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.ServeMux.HandleFunc(pattern, handler)
}

func (s *ServeMuxRouter) Register(routes ...*router.Route) {
	for _, route := range routes {
		s.Handle(route.Endpoint(), route.Handler())
	}
}

func (s *ServeMuxRouter) Param(req *http.Request, key string) string {
	// ServeMux patterns carry named parameters since Go 1.22.
	return req.PathValue(key)
}

func New() router.Router {
	return &ServeMuxRouter{ServeMux: http.NewServeMux()}
}
