// Package mcpgo exposes the nutrition engine as an MCP server over
// stdio or authenticated HTTP.
package mcpgo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foodsnap/nutrition-engine/internal/auth"
	"github.com/foodsnap/nutrition-engine/internal/service"
	"github.com/foodsnap/nutrition-engine/internal/types"
)

// responseRecorder wraps http.ResponseWriter to capture response details
// for request logging.
type responseRecorder struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.headerWritten {
		return
	}
	r.statusCode = code
	r.headerWritten = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.headerWritten {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(data)
	r.bytesWritten += n
	return n, err
}

// Server wraps the mark3labs MCP server with authentication and the
// engine service.
type Server struct {
	mcpServer *server.MCPServer
	svc       *service.Service
	auth      *auth.BearerTokenAuth
	log       *slog.Logger

	// Health check caching to keep /health cheap under polling.
	healthMu        sync.RWMutex
	lastHealthCheck time.Time
	lastHealthError error
}

// AnalyzeResponse is the structured result of the analysis tools.
type AnalyzeResponse struct {
	Found    bool                  `json:"found"`
	Analysis *types.AnalysisRecord `json:"analysis,omitempty"`
}

// SearchResponse is the structured result of search_products.
type SearchResponse struct {
	Count    int                   `json:"count"`
	Products []types.ProductRecord `json:"products"`
}

// HistoryResponse is the structured result of get_history.
type HistoryResponse struct {
	Count   int                  `json:"count"`
	Entries []types.HistoryEntry `json:"entries"`
}

// FavoriteResponse is the structured result of set_favorite.
type FavoriteResponse struct {
	Updated bool   `json:"updated"`
	ID      string `json:"id"`
}

// NewServer creates the MCP server and registers the engine tools.
func NewServer(svc *service.Service, authenticator *auth.BearerTokenAuth, logger *slog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		"Nutrition Analysis Engine",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		auth:      authenticator,
		log:       logger,
	}

	s.addTools()
	return s
}

func (s *Server) checkHealthWithCache(ctx context.Context) error {
	const cacheDuration = 10 * time.Second

	s.healthMu.RLock()
	if time.Since(s.lastHealthCheck) < cacheDuration {
		err := s.lastHealthError
		s.healthMu.RUnlock()
		return err
	}
	s.healthMu.RUnlock()

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	if time.Since(s.lastHealthCheck) < cacheDuration {
		return s.lastHealthError
	}

	err := s.svc.HealthCheck(ctx)
	s.lastHealthCheck = time.Now()
	s.lastHealthError = err
	return err
}

func (s *Server) addTools() {
	analyzeTool := mcp.NewTool("analyze_product",
		mcp.WithDescription("Analyze a product from its name, brand, ingredient list and per-100g nutrient values. Returns ingredient safety findings, dietary compatibility, a 0-100 health score with letter grade, and records the result in the scan history."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Product name. Required and must be non-empty."),
		),
		mcp.WithString("brand",
			mcp.Description("Brand name, optional."),
		),
		mcp.WithString("ingredients_text",
			mcp.Description("Comma or semicolon separated ingredient list. May be empty."),
		),
		mcp.WithObject("nutrients",
			mcp.Description("Per-100g nutrient values keyed by: energyKcal, fat, saturatedFat, carbohydrates, sugars, fiber, protein, sodium, salt. Missing keys are treated as 0."),
		),
		mcp.WithString("supplied_grade",
			mcp.Description("Optional externally sourced letter grade (a-e). Overrides the derived grade when valid."),
		),
		mcp.WithString("scan_method",
			mcp.Description("How the record was captured: barcode, search, voice or manual (default: manual)."),
		),
		mcp.WithOutputSchema[AnalyzeResponse](),
	)
	s.mcpServer.AddTool(analyzeTool, s.handleAnalyzeProduct)

	barcodeTool := mcp.NewTool("lookup_and_analyze_barcode",
		mcp.WithDescription("Look a product up by barcode (UPC/EAN) in the local dataset and run the full nutrition analysis on it."),
		mcp.WithString("barcode",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("The barcode (UPC/EAN) to look up."),
		),
		mcp.WithOutputSchema[AnalyzeResponse](),
	)
	s.mcpServer.AddTool(barcodeTool, s.handleLookupBarcode)

	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search the local product dataset by name and brand. Returns raw product records without analyzing them."),
		mcp.WithString("name",
			mcp.Description("Product name substring to match."),
		),
		mcp.WithString("brand",
			mcp.Description("Brand substring to match."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10, max: 50)"),
			mcp.DefaultNumber(10),
			mcp.Min(1),
			mcp.Max(50),
		),
		mcp.WithOutputSchema[SearchResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchProducts)

	historyTool := mcp.NewTool("get_history",
		mcp.WithDescription("Return entries from the scan history, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries (default: 20, max: 100)"),
			mcp.DefaultNumber(20),
			mcp.Min(1),
			mcp.Max(100),
		),
		mcp.WithOutputSchema[HistoryResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(historyTool, s.handleGetHistory)

	favoriteTool := mcp.NewTool("set_favorite",
		mcp.WithDescription("Mark or unmark a history entry as favorite."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("The history entry id."),
		),
		mcp.WithBoolean("favorite",
			mcp.Description("Desired favorite state (default: true)."),
		),
		mcp.WithOutputSchema[FavoriteResponse](),
	)
	s.mcpServer.AddTool(favoriteTool, s.handleSetFavorite)

	exportTool := mcp.NewTool("export_history",
		mcp.WithDescription("Export the full scan history as a versioned JSON document."),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(exportTool, s.handleExportHistory)
}

func (s *Server) handleAnalyzeProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.log.Debug("handleAnalyzeProduct: starting tool call", "arguments", request.GetArguments())

	name, err := request.RequireString("name")
	if err != nil {
		s.log.Warn("handleAnalyzeProduct: missing 'name' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'name': %v", err)), nil
	}

	record := types.ProductRecord{
		Name:             name,
		Brand:            request.GetString("brand", ""),
		IngredientsText:  request.GetString("ingredients_text", ""),
		SuppliedGradeTag: request.GetString("supplied_grade", ""),
		Nutrients:        parseNutrientsArg(request.GetArguments()["nutrients"]),
		ScanMethod:       parseScanMethod(request.GetString("scan_method", "")),
		ScannedAt:        time.Now().UTC(),
	}

	result, err := s.svc.AnalyzeAndRecord(ctx, record)
	if err != nil {
		s.log.Error("analysis failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	return structuredResult(s.log, AnalyzeResponse{Found: true, Analysis: &result})
}

func (s *Server) handleLookupBarcode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.log.Debug("handleLookupBarcode: starting tool call", "arguments", request.GetArguments())

	barcode, err := request.RequireString("barcode")
	if err != nil {
		s.log.Warn("handleLookupBarcode: missing 'barcode' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'barcode': %v", err)), nil
	}

	result, err := s.svc.LookupAndAnalyze(ctx, barcode)
	if err != nil {
		s.log.Error("barcode analysis failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Barcode analysis failed: %v", err)), nil
	}

	return structuredResult(s.log, AnalyzeResponse{Found: result != nil, Analysis: result})
}

func (s *Server) handleSearchProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	brand := request.GetString("brand", "")
	if name == "" && brand == "" {
		return mcp.NewToolResultError("At least one of 'name' or 'brand' is required"), nil
	}

	limit := int(request.GetFloat("limit", 10))
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	results, err := s.svc.SearchProducts(ctx, name, brand, limit)
	if err != nil {
		s.log.Error("product search failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Product search failed: %v", err)), nil
	}
	if results == nil {
		results = []types.ProductRecord{}
	}

	return structuredResult(s.log, SearchResponse{Count: len(results), Products: results})
}

func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(request.GetFloat("limit", 20))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := s.svc.History(ctx, limit)
	if err != nil {
		s.log.Error("history load failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("History load failed: %v", err)), nil
	}

	return structuredResult(s.log, HistoryResponse{Count: len(entries), Entries: entries})
}

func (s *Server) handleSetFavorite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		s.log.Warn("handleSetFavorite: missing 'id' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'id': %v", err)), nil
	}
	favorite := request.GetBool("favorite", true)

	updated, err := s.svc.SetFavorite(ctx, id, favorite)
	if err != nil {
		s.log.Error("favorite update failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Favorite update failed: %v", err)), nil
	}

	return structuredResult(s.log, FavoriteResponse{Updated: updated, ID: id})
}

func (s *Server) handleExportHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.svc.ExportHistory(ctx)
	if err != nil {
		s.log.Error("history export failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("History export failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// structuredResult marshals the response for text fallback and returns
// both structured content and text, like all tools here do.
func structuredResult(log *slog.Logger, response interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Error("failed to marshal tool response", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultStructured(response, string(responseJSON)), nil
}

// parseNutrientsArg converts the raw nutrients tool argument onto the
// closed nutrient schema. Unknown keys and non-numeric values are
// dropped; malformed input degrades to an empty map.
func parseNutrientsArg(raw interface{}) map[types.NutrientKey]*float64 {
	nutrients := map[types.NutrientKey]*float64{}

	m, ok := raw.(map[string]interface{})
	if !ok {
		return nutrients
	}
	for key, value := range m {
		nk := types.NutrientKey(key)
		if !types.IsNutrientKey(nk) {
			continue
		}
		if f, ok := value.(float64); ok {
			v := f
			nutrients[nk] = &v
		}
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

// ServeHTTP serves the MCP server over HTTP with bearer authentication.
func (s *Server) ServeHTTP(addr string) error {
	mux := http.NewServeMux()

	// Health endpoint, no auth required.
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if err := s.checkHealthWithCache(r.Context()); err != nil {
			s.log.Error("health check failed", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
		})
	})

	streamableServer := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
	)

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovery := recover(); recovery != nil {
				s.log.Error("MCP endpoint panic recovered",
					"panic", recovery,
					"method", r.Method,
					"url", r.URL.String(),
					"remote_addr", r.RemoteAddr)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Internal Server Error"))
			}
		}()

		if !s.auth.IsAuthorized(r) {
			s.auth.SetUnauthorizedHeaders(w)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			s.log.Warn("unauthorized MCP request", "remote_addr", r.RemoteAddr, "user_agent", r.UserAgent())
			return
		}

		recorder := &responseRecorder{ResponseWriter: w}
		streamableServer.ServeHTTP(recorder, r)

		s.log.Debug("MCP response sent",
			"status_code", recorder.statusCode,
			"response_size", recorder.bytesWritten)
	})

	s.log.Info("starting MCP server", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

// ServeStdio serves the MCP server over stdio for local integrations.
func (s *Server) ServeStdio() error {
	s.log.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.mcpServer)
}
