package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/middleware"
	"github.com/ahsanfayaz52/noteservice/internal/workspace"
)

type RouterConfig struct {
	Auth         *auth.Service
	JWT          *auth.JWTService
	Workspaces   *workspace.Manager
	Cookie       CookieOptions
	MaxBodyBytes int64
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestSizeLimiter(cfg.MaxBodyBytes))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		success(w, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/api/register", RegisterHandler(cfg.Auth, cfg.JWT, cfg.Cookie)).Methods("POST")
	r.HandleFunc("/api/login", LoginHandler(cfg.Auth, cfg.JWT, cfg.Cookie)).Methods("POST")

	// Authenticated routes
	s := r.PathPrefix("/api").Subrouter()
	s.Use(auth.JWTMiddleware(cfg.JWT))

	notesHandler := NewNotesHandler(cfg.Workspaces)

	s.HandleFunc("/logout", LogoutHandler(cfg.JWT, cfg.Workspaces, cfg.Cookie)).Methods("POST")
	s.HandleFunc("/me", MeHandler()).Methods("GET")

	s.HandleFunc("/notes", notesHandler.List).Methods("GET")
	s.HandleFunc("/notes", notesHandler.Create).Methods("POST")
	s.HandleFunc("/notes/{id:[0-9]+}", notesHandler.Get).Methods("GET")
	s.HandleFunc("/notes/{id:[0-9]+}", notesHandler.Update).Methods("PUT")
	s.HandleFunc("/notes/{id:[0-9]+}", notesHandler.Delete).Methods("DELETE")
	s.HandleFunc("/notes/{id:[0-9]+}/discard", notesHandler.Discard).Methods("POST")
	s.HandleFunc("/notes/{id:[0-9]+}/autosave", notesHandler.Autosave).Methods("POST")

	s.HandleFunc("/workspace", notesHandler.Workspace).Methods("GET")
	s.HandleFunc("/workspace/search", notesHandler.SetSearch).Methods("PUT")
	s.HandleFunc("/workspace/selection", notesHandler.SetSelection).Methods("PUT")
	s.HandleFunc("/workspace/new", notesHandler.AcknowledgeNew).Methods("DELETE")

	return r
}
