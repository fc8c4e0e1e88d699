package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wricardo/mcp-training/racetrack/game/config"
	"github.com/wricardo/mcp-training/racetrack/game/engine"
	"github.com/wricardo/mcp-training/racetrack/game/runs"
	"github.com/wricardo/mcp-training/racetrack/game/service"
	"github.com/wricardo/mcp-training/racetrack/internal/ctxlog"
	"github.com/wricardo/mcp-training/racetrack/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.MazeService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(mazeService service.MazeService, hub *websocket.Hub) *Server {
	s := &Server{
		service: mazeService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(requestLogger)

	api := s.router.PathPrefix("/api").Subrouter()

	// Mazes
	api.HandleFunc("/mazes", s.handleListMazes).Methods("GET")
	api.HandleFunc("/mazes", s.handleSaveMaze).Methods("POST")
	api.HandleFunc("/mazes/{id}", s.handleDescribeMaze).Methods("GET")

	// Analysis
	api.HandleFunc("/mazes/{id}/analyze", s.handleAnalyze).Methods("POST")
	api.HandleFunc("/mazes/{id}/cheats", s.handleListCheats).Methods("GET")
	api.HandleFunc("/mazes/{id}/path", s.handleShortestPath).Methods("GET")
	api.HandleFunc("/mazes/{id}/crosscheck", s.handleCrossValidate).Methods("GET")

	// Runs
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can mount extra handlers
func (s *Server) Router() *mux.Router {
	return s.router
}

// requestLogger tags each request with an ID and stores a scoped logger
// in its context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := ctxlog.With(r.Context(), "request_id", requestID, "method", r.Method, "path", r.URL.Path)
		started := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		ctxlog.FromContext(ctx).Debug("request served", "duration", time.Since(started))
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrMazeNotFound), errors.Is(err, runs.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrMalformedGrid),
		errors.Is(err, engine.ErrInvalidBudget),
		errors.Is(err, config.ErrInvalidMaze),
		errors.Is(err, runs.ErrInvalidRunID):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnreachableGoal):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseOptionalInt reads an integer query parameter. A missing parameter
// yields nil.
func parseOptionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return &v, nil
}

// parseAnalysisQuery reads budget and min_saving overrides from the query
func parseAnalysisQuery(r *http.Request) (service.AnalysisRequest, error) {
	var req service.AnalysisRequest

	budget, err := parseOptionalInt(r, "budget")
	if err != nil {
		return req, err
	}
	minSaving, err := parseOptionalInt(r, "min_saving")
	if err != nil {
		return req, err
	}

	req.MaxCheatBudget = budget
	req.MinSaving = minSaving
	return req, nil
}

// Maze Handlers

func (s *Server) handleListMazes(w http.ResponseWriter, r *http.Request) {
	mazes, err := s.service.ListMazes(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(mazes),
		"mazes": mazes,
	})
}

func (s *Server) handleDescribeMaze(w http.ResponseWriter, r *http.Request) {
	mazeID := mux.Vars(r)["id"]

	detail, err := s.service.DescribeMaze(r.Context(), mazeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSaveMaze(w http.ResponseWriter, r *http.Request) {
	var mazeConfig engine.MazeConfig
	if err := json.NewDecoder(r.Body).Decode(&mazeConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if mazeConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Maze name is required")
		return
	}

	// Layout lines may arrive as one string with newlines
	if len(mazeConfig.Layout) == 1 && strings.Contains(mazeConfig.Layout[0], "\n") {
		mazeConfig.Layout = strings.Split(strings.TrimRight(mazeConfig.Layout[0], "\n"), "\n")
	}

	if err := s.service.SaveMaze(r.Context(), mazeConfig.Name, &mazeConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save maze: %v", err))
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToMaze(mazeConfig.Name, websocket.EventMazeUpdated, map[string]string{"maze_id": mazeConfig.Name})
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Maze saved successfully",
		"maze_id": mazeConfig.Name,
	})
}

// Analysis Handlers

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	mazeID := mux.Vars(r)["id"]

	// An empty body keeps the maze defaults
	var req service.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Analyze(r.Context(), mazeID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToMaze(mazeID, websocket.EventAnalysisComplete, result)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListCheats(w http.ResponseWriter, r *http.Request) {
	mazeID := mux.Vars(r)["id"]
	query := r.URL.Query()

	req, err := parseAnalysisQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := service.CheatListOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	page, err := s.service.ListCheats(r.Context(), mazeID, req, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	mazeID := mux.Vars(r)["id"]

	budget, err := parseOptionalInt(r, "budget")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.ShortestPath(r.Context(), mazeID, budget)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCrossValidate(w http.ResponseWriter, r *http.Request) {
	mazeID := mux.Vars(r)["id"]

	req, err := parseAnalysisQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.CrossValidate(r.Context(), mazeID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToMaze(mazeID, websocket.EventCrossCheck, result)
	}

	respondJSON(w, http.StatusOK, result)
}

// Run Handlers

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	list, err := s.service.ListRuns(r.Context(), query.Get("maze"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	total := len(list)
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(list) {
			list = list[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(list),
		"total": total,
		"runs":  list,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	run, err := s.service.GetRun(r.Context(), runID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	if err := s.service.DeleteRun(r.Context(), runID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Run %s deleted", runID),
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	mazeID := r.URL.Query().Get("maze")
	if mazeID == "" {
		http.Error(w, "maze parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket updates disabled", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.DescribeMaze(r.Context(), mazeID); err != nil {
		http.Error(w, "Invalid maze", statusFor(err))
		return
	}

	s.hub.ServeWS(w, r, mazeID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
