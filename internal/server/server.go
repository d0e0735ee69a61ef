// Package server exposes the nutrition engine as a plain HTTP JSON API
// for hosts that do not speak MCP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodsnap/nutrition-engine/internal/auth"
	"github.com/foodsnap/nutrition-engine/internal/config"
	"github.com/foodsnap/nutrition-engine/internal/service"
	"github.com/foodsnap/nutrition-engine/internal/types"
)

// AnalyzeRequest is the JSON body for POST /analyze.
type AnalyzeRequest struct {
	Name            string             `json:"name"`
	Brand           string             `json:"brand"`
	IngredientsText string             `json:"ingredients_text"`
	Nutrients       map[string]float64 `json:"nutrients"`
	SuppliedGrade   string             `json:"supplied_grade"`
	Barcode         string             `json:"barcode"`
	ScanMethod      string             `json:"scan_method"`
}

// AnalyzeResponse is the JSON response for POST /analyze.
type AnalyzeResponse struct {
	Found    bool                  `json:"found"`
	Analysis *types.AnalysisRecord `json:"analysis,omitempty"`
}

// HistoryResponse is the JSON response for GET /history.
type HistoryResponse struct {
	Count   int                  `json:"count"`
	Entries []types.HistoryEntry `json:"entries"`
}

// SearchResponse is the JSON response for GET /search.
type SearchResponse struct {
	Count    int                   `json:"count"`
	Products []types.ProductRecord `json:"products"`
}

// FavoriteRequest is the JSON body for POST /favorite.
type FavoriteRequest struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

// Server is the plain HTTP host around the engine service.
type Server struct {
	config *config.Config
	svc    *service.Service
	auth   *auth.BearerTokenAuth
	log    *slog.Logger
	ready  bool
}

// New creates a new HTTP server around an initialized service.
func New(cfg *config.Config, svc *service.Service, logger *slog.Logger) *Server {
	return &Server{
		config: cfg,
		svc:    svc,
		auth:   auth.NewBearerTokenAuth(cfg.AuthToken),
		log:    logger,
		ready:  true,
	}
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting nutrition engine HTTP API", "port", s.config.Port)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/barcode/analyze", s.handleBarcodeAnalyze)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/favorite", s.handleFavorite)
	mux.HandleFunc("/export", s.handleExport)

	httpServer := &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: mux,
	}

	go func() {
		s.log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	s.log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("server shutdown error", "error", err)
	}

	s.log.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.ready && s.svc.HealthCheck(r.Context()) == nil

	response := HealthResponse{Status: "ok", Ready: ready}
	w.Header().Set("Content-Type", "application/json")
	if !ready {
		response.Status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("bad analyze request", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	record := types.ProductRecord{
		Name:             req.Name,
		Brand:            req.Brand,
		IngredientsText:  req.IngredientsText,
		SuppliedGradeTag: req.SuppliedGrade,
		Barcode:          req.Barcode,
		Nutrients:        toNutrientMap(req.Nutrients),
		ScanMethod:       parseScanMethod(req.ScanMethod),
		ScannedAt:        time.Now().UTC(),
	}

	start := time.Now()
	result, err := s.svc.AnalyzeAndRecord(r.Context(), record)
	if err != nil {
		s.log.Error("analysis failed", "error", err, "product", req.Name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.log.Info("analysis completed", "product", req.Name, "score", result.HealthScore, "duration", time.Since(start))

	writeJSON(w, AnalyzeResponse{Found: true, Analysis: &result})
}

func (s *Server) handleBarcodeAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Barcode == "" {
		http.Error(w, "barcode is required", http.StatusBadRequest)
		return
	}

	result, err := s.svc.LookupAndAnalyze(r.Context(), req.Barcode)
	if err != nil {
		s.log.Error("barcode analysis failed", "error", err, "barcode", req.Barcode)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, AnalyzeResponse{Found: result != nil, Analysis: result})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	name := r.URL.Query().Get("name")
	brand := r.URL.Query().Get("brand")
	if name == "" && brand == "" {
		http.Error(w, "name or brand is required", http.StatusBadRequest)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		fmt.Sscanf(raw, "%d", &limit)
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	results, err := s.svc.SearchProducts(r.Context(), name, brand, limit)
	if err != nil {
		s.log.Error("product search failed", "error", err, "name", name, "brand", brand)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []types.ProductRecord{}
	}

	writeJSON(w, SearchResponse{Count: len(results), Products: results})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		fmt.Sscanf(raw, "%d", &limit)
	}

	entries, err := s.svc.History(r.Context(), limit)
	if err != nil {
		s.log.Error("history load failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, HistoryResponse{Count: len(entries), Entries: entries})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	updated, err := s.svc.SetFavorite(r.Context(), req.ID, req.Favorite)
	if err != nil {
		s.log.Error("favorite update failed", "error", err, "id", req.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]interface{}{"updated": true, "id": req.ID})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	data, err := s.svc.ExportHistory(r.Context())
	if err != nil {
		s.log.Error("history export failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="scan-history.json"`)
	w.Write(data)
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.auth.IsAuthorized(r) {
		return true
	}
	s.auth.SetUnauthorizedHeaders(w)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
	s.log.Warn("unauthorized request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	return false
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func toNutrientMap(raw map[string]float64) map[types.NutrientKey]*float64 {
	nutrients := map[types.NutrientKey]*float64{}
	for key, value := range raw {
		nk := types.NutrientKey(key)
		if !types.IsNutrientKey(nk) {
			continue
		}
		v := value
		nutrients[nk] = &v
	}
	return nutrients
}

func parseScanMethod(raw string) types.ScanMethod {
	switch types.ScanMethod(raw) {
	case types.ScanMethodBarcode, types.ScanMethodSearch, types.ScanMethodVoice:
		return types.ScanMethod(raw)
	default:
		return types.ScanMethodManual
	}
}
