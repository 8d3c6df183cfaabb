package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *server) routes() {
	api := s.router.PathPrefix("/v1/ecs").Subrouter()
	api.HandleFunc("/ping", s.PingHandler)
	api.HandleFunc("/version", s.VersionHandler)
	api.Handle("/metrics", promhttp.Handler())

	// Docker image handlers
	api.HandleFunc("/images", s.ImageVerificationHandler).Methods(http.MethodHead).Queries("image", "{image}")

	// Task definition handlers
	api.HandleFunc("/taskdefs/render", s.TaskDefRenderHandler).Methods(http.MethodPost)
	api.HandleFunc("/{account}/taskdefs/render", s.TaskDefRegisterHandler).Methods(http.MethodPost)
}
