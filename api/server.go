package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/YaleSpinup/ecs-taskdef-render/common"
	"github.com/YaleSpinup/ecs-taskdef-render/ecs"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	log "github.com/sirupsen/logrus"
)

type server struct {
	ecsServices map[string]ecs.ECS
	router      *mux.Router
	version     common.Version
}

func newServer(config common.Config) *server {
	s := server{
		ecsServices: make(map[string]ecs.ECS),
		router:      mux.NewRouter(),
		version:     config.Version,
	}

	for name, c := range config.Accounts {
		log.Debugf("Creating new services for account '%s' with key '%s' in region '%s'", name, c.Akid, c.Region)
		s.ecsServices[name] = ecs.NewSession(c)
	}

	// load routes
	s.routes()

	return &s
}

// NewServer creates a new server and starts it
func NewServer(config common.Config) error {
	s := newServer(config)

	publicURLs := map[string]string{
		"/v1/ecs/ping":    "public",
		"/v1/ecs/version": "public",
		"/v1/ecs/metrics": "public",
	}

	handler := handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, TokenMiddleware([]byte(config.Token), publicURLs, s.router)))
	srv := &http.Server{
		Handler:      handler,
		Addr:         config.ListenAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Infof("Starting listener on %s", config.ListenAddress)
	// Run our server in a goroutine so that it doesn't block.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("error starting listener: %s", err)
			os.Exit(1)
		}
	}()

	c := make(chan os.Signal, 1)
	// We'll accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+/) will not be caught.
	signal.Notify(c, os.Interrupt)

	// Block until we receive our signal.
	<-c

	// setup server context with cancellation
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline.
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("error shutting down: %s", err)
	}
	log.Warn("shutting down")

	return nil
}

// LogWriter is an http.ResponseWriter
type LogWriter struct {
	http.ResponseWriter
}

// Write log message if http response writer returns an error
func (w LogWriter) Write(p []byte) (n int, err error) {
	n, err = w.ResponseWriter.Write(p)
	if err != nil {
		log.Errorf("Write failed: %v", err)
	}
	return
}
