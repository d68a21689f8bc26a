package web

import (
	"io/fs"
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Static files
	staticSubFS, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSubFS))))

	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)

	// Message API
	mux.HandleFunc("GET /messages", s.handleListMessages)
	mux.HandleFunc("POST /messages", s.handleCreateMessage)

	// System
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)
}
