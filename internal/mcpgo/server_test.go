package mcpgo

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsnap/nutrition-engine/internal/analysis"
	"github.com/foodsnap/nutrition-engine/internal/auth"
	"github.com/foodsnap/nutrition-engine/internal/config"
	"github.com/foodsnap/nutrition-engine/internal/history"
	"github.com/foodsnap/nutrition-engine/internal/retrieval"
	"github.com/foodsnap/nutrition-engine/internal/service"
	"github.com/foodsnap/nutrition-engine/internal/types"
)

// fakeStore is an in-memory history store for tool handler tests.
type fakeStore struct {
	mu      sync.Mutex
	entries []types.HistoryEntry
	pingErr error
}

func (f *fakeStore) Load(ctx context.Context) ([]types.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.HistoryEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeStore) Save(ctx context.Context, entries []types.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make([]types.HistoryEntry, len(entries))
	copy(f.entries, entries)
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeStore) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func newTestServer(t *testing.T, store *fakeStore, source retrieval.Source) *Server {
	t.Helper()
	logger := config.NewTestLogger(io.Discard, "ERROR")
	svc := service.New(
		analysis.NewAnalyzer(logger),
		history.NewReconciler(history.DefaultOptions()),
		store,
		source,
		logger,
	)
	return NewServer(svc, auth.NewBearerTokenAuth("test-token"), logger)
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestServer_checkHealthWithCache(t *testing.T) {
	t.Run("first call performs health check", func(t *testing.T) {
		server := newTestServer(t, &fakeStore{}, nil)

		err := server.checkHealthWithCache(context.Background())
		assert.NoError(t, err)
		assert.False(t, server.lastHealthCheck.IsZero())
	})

	t.Run("subsequent calls within the window use the cache", func(t *testing.T) {
		server := newTestServer(t, &fakeStore{}, nil)
		ctx := context.Background()

		require.NoError(t, server.checkHealthWithCache(ctx))
		firstCheckTime := server.lastHealthCheck

		require.NoError(t, server.checkHealthWithCache(ctx))
		assert.Equal(t, firstCheckTime, server.lastHealthCheck)
	})

	t.Run("caches error results", func(t *testing.T) {
		store := &fakeStore{}
		testError := errors.New("database connection failed")
		store.setPingErr(testError)
		server := newTestServer(t, store, nil)
		ctx := context.Background()

		err := server.checkHealthWithCache(ctx)
		assert.Equal(t, testError, err)

		// Fixing the store does not bypass the cached error.
		store.setPingErr(nil)
		assert.Equal(t, testError, server.checkHealthWithCache(ctx))
	})

	t.Run("cache expires", func(t *testing.T) {
		server := newTestServer(t, &fakeStore{}, nil)
		ctx := context.Background()

		require.NoError(t, server.checkHealthWithCache(ctx))
		server.lastHealthCheck = time.Now().Add(-11 * time.Second)

		require.NoError(t, server.checkHealthWithCache(ctx))
		assert.True(t, time.Since(server.lastHealthCheck) < time.Second)
	})
}

func TestHandleAnalyzeProduct(t *testing.T) {
	store := &fakeStore{}
	server := newTestServer(t, store, nil)

	result, err := server.handleAnalyzeProduct(context.Background(), toolRequest(map[string]interface{}{
		"name":             "Granola Bar",
		"brand":            "Hearth & Oat",
		"ingredients_text": "organic oats, sea salt",
		"nutrients": map[string]interface{}{
			"energyKcal": 380.0,
			"sugars":     12.0,
			"bogusKey":   1.0,
		},
		"scan_method": "barcode",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	response, ok := result.StructuredContent.(AnalyzeResponse)
	require.True(t, ok)
	assert.True(t, response.Found)
	require.NotNil(t, response.Analysis)
	assert.Equal(t, "Granola Bar", response.Analysis.ProductName)
	assert.Equal(t, types.ScanMethodBarcode, response.Analysis.ScanMethod)

	assert.Len(t, store.entries, 1, "analysis is recorded in history")
}

func TestHandleAnalyzeProduct_MissingName(t *testing.T) {
	server := newTestServer(t, &fakeStore{}, nil)

	result, err := server.handleAnalyzeProduct(context.Background(), toolRequest(map[string]interface{}{
		"brand": "Hearth & Oat",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleLookupBarcode(t *testing.T) {
	logger := config.NewTestLogger(io.Discard, "ERROR")
	store := &fakeStore{}
	server := newTestServer(t, store, retrieval.NewMockSource(logger))

	t.Run("known barcode", func(t *testing.T) {
		result, err := server.handleLookupBarcode(context.Background(), toolRequest(map[string]interface{}{
			"barcode": "3017620422003",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		response, ok := result.StructuredContent.(AnalyzeResponse)
		require.True(t, ok)
		assert.True(t, response.Found)
		assert.Equal(t, "Nutella", response.Analysis.ProductName)
	})

	t.Run("unknown barcode", func(t *testing.T) {
		result, err := server.handleLookupBarcode(context.Background(), toolRequest(map[string]interface{}{
			"barcode": "0000000000000",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		response, ok := result.StructuredContent.(AnalyzeResponse)
		require.True(t, ok)
		assert.False(t, response.Found)
		assert.Nil(t, response.Analysis)
	})

	t.Run("missing barcode parameter", func(t *testing.T) {
		result, err := server.handleLookupBarcode(context.Background(), toolRequest(map[string]interface{}{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestHandleSearchProducts(t *testing.T) {
	logger := config.NewTestLogger(io.Discard, "ERROR")
	server := newTestServer(t, &fakeStore{}, retrieval.NewMockSource(logger))
	ctx := context.Background()

	t.Run("by name", func(t *testing.T) {
		result, err := server.handleSearchProducts(ctx, toolRequest(map[string]interface{}{
			"name": "nutella",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		response, ok := result.StructuredContent.(SearchResponse)
		require.True(t, ok)
		assert.Equal(t, 1, response.Count)
		assert.Equal(t, "Nutella", response.Products[0].Name)
	})

	t.Run("no match yields empty list", func(t *testing.T) {
		result, err := server.handleSearchProducts(ctx, toolRequest(map[string]interface{}{
			"name": "no such product",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		response, ok := result.StructuredContent.(SearchResponse)
		require.True(t, ok)
		assert.Equal(t, 0, response.Count)
		assert.NotNil(t, response.Products)
	})

	t.Run("missing both name and brand", func(t *testing.T) {
		result, err := server.handleSearchProducts(ctx, toolRequest(map[string]interface{}{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestHandleGetHistory(t *testing.T) {
	store := &fakeStore{}
	server := newTestServer(t, store, nil)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		result, err := server.handleAnalyzeProduct(ctx, toolRequest(map[string]interface{}{"name": name}))
		require.NoError(t, err)
		require.False(t, result.IsError)
	}

	result, err := server.handleGetHistory(ctx, toolRequest(map[string]interface{}{"limit": 2.0}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	response, ok := result.StructuredContent.(HistoryResponse)
	require.True(t, ok)
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "C", response.Entries[0].ProductName, "newest first")
}

func TestHandleSetFavorite(t *testing.T) {
	store := &fakeStore{}
	server := newTestServer(t, store, nil)
	ctx := context.Background()

	result, err := server.handleAnalyzeProduct(ctx, toolRequest(map[string]interface{}{"name": "Granola"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	id := store.entries[0].ID

	t.Run("existing entry", func(t *testing.T) {
		result, err := server.handleSetFavorite(ctx, toolRequest(map[string]interface{}{
			"id": id,
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		response, ok := result.StructuredContent.(FavoriteResponse)
		require.True(t, ok)
		assert.True(t, response.Updated)
		assert.True(t, store.entries[0].IsFavorite)
	})

	t.Run("unknown id", func(t *testing.T) {
		result, err := server.handleSetFavorite(ctx, toolRequest(map[string]interface{}{
			"id": "no-such-id",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		response, ok := result.StructuredContent.(FavoriteResponse)
		require.True(t, ok)
		assert.False(t, response.Updated)
	})
}

func TestHandleExportHistory(t *testing.T) {
	server := newTestServer(t, &fakeStore{}, nil)

	result, err := server.handleExportHistory(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Contains(t, text.Text, "format_version")
}

func TestParseNutrientsArg(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		expected int
	}{
		{"nil input", nil, 0},
		{"wrong type", "not a map", 0},
		{"valid keys", map[string]interface{}{"sugars": 10.0, "fiber": 3.0}, 2},
		{"unknown keys dropped", map[string]interface{}{"sugars": 10.0, "caffeine": 1.0}, 1},
		{"non-numeric values dropped", map[string]interface{}{"sugars": "ten"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nutrients := parseNutrientsArg(tt.raw)
			assert.NotNil(t, nutrients)
			assert.Len(t, nutrients, tt.expected)
		})
	}
}

func TestParseScanMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected types.ScanMethod
	}{
		{"barcode", types.ScanMethodBarcode},
		{"search", types.ScanMethodSearch},
		{"voice", types.ScanMethodVoice},
		{"manual", types.ScanMethodManual},
		{"", types.ScanMethodManual},
		{"telepathy", types.ScanMethodManual},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseScanMethod(tt.input), "input %q", tt.input)
	}
}
