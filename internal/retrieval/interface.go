// Package retrieval looks product records up from the Open Food Facts
// parquet dataset and maps them onto the engine's closed nutrient
// schema. It is the capture/retrieval collaborator: the analysis core
// never performs I/O itself.
package retrieval

import (
	"context"
	"log/slog"
	"os"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// Source defines the product lookup surface the host consumes.
type Source interface {
	LookupBarcode(ctx context.Context, barcode string) (*types.ProductRecord, error)
	SearchProducts(ctx context.Context, name, brand string, limit int) ([]types.ProductRecord, error)
	TestConnection(ctx context.Context) error
	Close() error
}

// NewSource creates a product source. The mock source is used when the
// RETRIEVAL_MOCK environment variable is set, which keeps tests and
// local development off the multi-gigabyte dataset.
func NewSource(parquetPath string, logger *slog.Logger) (Source, error) {
	if os.Getenv("RETRIEVAL_MOCK") == "true" {
		return NewMockSource(logger), nil
	}
	return NewEngine(parquetPath, logger)
}
