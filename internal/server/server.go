// Package server is the HTTP surface of the résumé site.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"portfolio/internal/chat"
	"portfolio/internal/metrics"
	"portfolio/internal/tools"
)

// WebServer serves the résumé page, the read-only content API and the
// streaming chat endpoint.
type WebServer struct {
	content   tools.Source
	chat      *chat.Orchestrator
	metrics   *metrics.Metrics
	server    *http.Server
	port      int
	startTime time.Time
}

func NewWebServer(port int, content tools.Source, orchestrator *chat.Orchestrator, m *metrics.Metrics) *WebServer {
	return &WebServer{
		content:   content,
		chat:      orchestrator,
		metrics:   m,
		port:      port,
		startTime: time.Now(),
	}
}

// Handler returns the routing table.
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/resume-chat", ws.handleResumeChat)
	mux.HandleFunc("/api/jobs", ws.handleJobs)
	mux.HandleFunc("/api/education", ws.handleEducation)
	mux.HandleFunc("/api/status", ws.handleStatus)
	if ws.metrics != nil {
		mux.Handle("/metrics", ws.metrics.Handler())
	}
	mux.HandleFunc("/", ws.handleRoot)
	return mux
}

// Start blocks until the server stops.
func (ws *WebServer) Start() error {
	ws.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", ws.port),
		Handler:     ws.Handler(),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: chat streams outlive any fixed deadline
		IdleTimeout: 60 * time.Second,
	}

	log.Printf("🌐 Starting résumé site on http://localhost:%d", ws.port)
	return ws.server.ListenAndServe()
}

func (ws *WebServer) Stop() error {
	if ws.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ws.server.Shutdown(ctx)
}

func (ws *WebServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, tools.ListAllJobs(ws.content))
}

func (ws *WebServer) handleEducation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, tools.ListAllEducation(ws.content))
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "portfolio",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(ws.startTime).String(),
		"jobs":      len(ws.content.Jobs()),
		"education": len(ws.content.Educations()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
