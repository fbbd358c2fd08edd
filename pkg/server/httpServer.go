package server

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"

	"github.com/pdnportal/portal/pkg/application"
	"github.com/pdnportal/portal/pkg/httpapi"
)

// HTTPServer assembles the registered controllers and middleware into a
// gzip-wrapped mux router. Fallback responses carry the same JSON envelope
// as the API controllers.
type HTTPServer struct {
	controllers []application.Controller
	middlewares []mux.MiddlewareFunc
}

func NewHTTPServer(app application.Application) *HTTPServer {
	return &HTTPServer{
		controllers: app.Controllers(),
		middlewares: app.Middleware(),
	}
}

func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.middlewares...)
	for _, controller := range s.controllers {
		controller.Register(r)
	}

	// mux does not route fallback handlers through r.Use; wrap them by hand
	// so misses still get logged and stamped with a request id.
	r.NotFoundHandler = s.wrap(fallback(http.StatusNotFound, "NOT_FOUND", "resource not found"))
	r.MethodNotAllowedHandler = s.wrap(fallback(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"))
	return r
}

func (s *HTTPServer) wrap(handler http.Handler) http.Handler {
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		handler = s.middlewares[i](handler)
	}
	return handler
}

func fallback(status int, code, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, status, code, message, map[string]string{
			"path": r.URL.Path,
		})
	})
}

func (s *HTTPServer) Handler() http.Handler {
	return gziphandler.GzipHandler(s.Router())
}

func (s *HTTPServer) Start(socketAddress string) error {
	return http.ListenAndServe(socketAddress, s.Handler())
}
