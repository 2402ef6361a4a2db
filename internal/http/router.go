package http

import (
	"net/http"

	"go.uber.org/zap"
)

// Registrar adds a resource's routes to the mux.
type Registrar interface {
	Register(mux *http.ServeMux)
}

type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger, registrars ...Registrar) *Router {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	for _, registrar := range registrars {
		registrar.Register(mux)
	}

	return &Router{mux: mux, logger: logger}
}

func (r *Router) Handler() http.Handler {
	return withRequestLogging(r.logger, r.mux)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
