package httprouter

import (
	"net/http"
	"strings"

	jshttprouter "github.com/julienschmidt/httprouter"

	"github.com/pamcare/pamcare/router"
)

// Router implements router.Router on julienschmidt/httprouter. Patterns use
// the same "METHOD /path/{name}" form as the ServeMux implementation and are
// translated to httprouter's ":name" syntax on registration.
type Router struct {
	rt *jshttprouter.Router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	method, path := splitPattern(pattern)
	r.rt.Handler(method, path, handler)
}

func (r *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	r.Handle(pattern, http.HandlerFunc(handler))
}

func (r *Router) Register(routes ...*router.Route) {
	for _, route := range routes {
		r.Handle(route.Endpoint(), route.Handler())
	}
}

func (r *Router) Param(req *http.Request, key string) string {
	params := jshttprouter.ParamsFromContext(req.Context())
	return params.ByName(key)
}

func New() router.Router {
	return &Router{rt: jshttprouter.New()}
}

// splitPattern separates the optional method prefix and rewrites {name}
// segments to httprouter's :name form.
func splitPattern(pattern string) (method, path string) {
	method = http.MethodGet
	path = pattern

	if before, after, found := strings.Cut(pattern, " "); found && !strings.HasPrefix(before, "/") {
		method = before
		path = strings.TrimSpace(after)
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = ":" + seg[1:len(seg)-1]
		}
	}
	return method, strings.Join(segments, "/")
}
