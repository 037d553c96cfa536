package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter mounts the full HTTP surface: versioned beneficio routes plus
// health and Prometheus metrics.
func NewRouter(h *Handler, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(logger))

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.Health).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/beneficios", h.List).Methods("GET")
	v1.HandleFunc("/beneficios", h.Create).Methods("POST")
	v1.HandleFunc("/beneficios/ativos", h.ListActive).Methods("GET")
	v1.HandleFunc("/beneficios/stats", h.GetStats).Methods("GET")
	v1.HandleFunc("/beneficios/transferir", h.Transfer).Methods("POST")
	v1.HandleFunc("/beneficios/{id:[0-9]+}", h.Get).Methods("GET")
	v1.HandleFunc("/beneficios/{id:[0-9]+}", h.Update).Methods("PUT")
	v1.HandleFunc("/beneficios/{id:[0-9]+}", h.Delete).Methods("DELETE")

	return r
}
