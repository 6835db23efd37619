package api

import (
	"net/http"

	"arrival-route-service/internal/api/handlers"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	// Positions receives fixes posted over HTTP. Nil when fixes come from Kafka.
	Positions handlers.PositionSink
	Session   handlers.SnapshotReader
	Stream    http.Handler
	Logger    logrus.FieldLogger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	positionHandler := &handlers.PositionHandler{Sink: deps.Positions}
	sessionHandler := &handlers.SessionHandler{Session: deps.Session}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/positions", positionHandler.Post).Methods(http.MethodPost)
	r.HandleFunc("/session", sessionHandler.Get).Methods(http.MethodGet)
	if deps.Stream != nil {
		r.Handle("/ws", deps.Stream).Methods(http.MethodGet)
	}

	return requestIDMiddleware(loggingMiddleware(r, log))
}
