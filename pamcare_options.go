package pamcare

import (
	"log/slog"
	"os"

	phuslog "github.com/phuslu/log"

	"github.com/pamcare/pamcare/core"
	"github.com/pamcare/pamcare/router"
	"github.com/pamcare/pamcare/router/httprouter"
	"github.com/pamcare/pamcare/router/servemux"
)

func newServeMuxRouter() router.Router {
	return servemux.New()
}

// WithRouterServeMux routes with the standard library ServeMux.
func WithRouterServeMux() core.Option {
	return core.WithRouter(servemux.New())
}

// WithRouterHttprouter routes with julienschmidt/httprouter.
func WithRouterHttprouter() core.Option {
	return core.WithRouter(httprouter.New())
}

// DefaultLoggerOptions are the slog handler settings used when none are
// given: debug level, timestamps stripped.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}

// WithPhusLogger configures slog with phuslu/log's JSON handler.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	logger := slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
	return core.WithLogger(logger)
}

// WithTextLogger configures slog with the standard library's text handler.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return core.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, opts)))
}
