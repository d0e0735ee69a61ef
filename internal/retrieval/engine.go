package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// Engine queries the parquet dataset through DuckDB.
type Engine struct {
	db          *sql.DB
	parquetPath string
	log         *slog.Logger
}

var _ Source = (*Engine)(nil)

// nutrimentKeyMap translates raw Open Food Facts per-100g nutriment keys
// into the engine's closed schema. Keys outside this map are dropped.
var nutrimentKeyMap = map[string]types.NutrientKey{
	"energy-kcal_100g":   types.NutrientEnergyKcal,
	"fat_100g":           types.NutrientFat,
	"saturated-fat_100g": types.NutrientSaturatedFat,
	"carbohydrates_100g": types.NutrientCarbohydrates,
	"sugars_100g":        types.NutrientSugars,
	"fiber_100g":         types.NutrientFiber,
	"proteins_100g":      types.NutrientProtein,
	"sodium_100g":        types.NutrientSodium,
	"salt_100g":          types.NutrientSalt,
}

// NewEngine creates a DuckDB-backed product source over the parquet
// dataset at parquetPath.
func NewEngine(parquetPath string, logger *slog.Logger) (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	return &Engine{
		db:          db,
		parquetPath: parquetPath,
		log:         logger,
	}, nil
}

// Close closes the database connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// LookupBarcode finds a product by exact barcode match and maps it to a
// ProductRecord. Returns (nil, nil) when no product matches.
func (e *Engine) LookupBarcode(ctx context.Context, barcode string) (*types.ProductRecord, error) {
	start := time.Now()
	e.log.Debug("LookupBarcode starting", "barcode", barcode)

	query := `
		SELECT product_name, brands, nutriments, ingredients_text, nutriscore_grade
		FROM read_parquet(?)
		WHERE code = ?
		LIMIT 1`

	rows, err := e.db.QueryContext(ctx, query, e.parquetPath, barcode)
	if err != nil {
		e.log.Error("barcode query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("barcode query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("barcode rows error: %w", err)
		}
		e.log.Debug("no product found for barcode", "barcode", barcode, "duration", time.Since(start))
		return nil, nil
	}

	record, err := e.scanRecord(rows)
	if err != nil {
		return nil, err
	}
	record.Barcode = barcode
	record.ScanMethod = types.ScanMethodBarcode
	record.ScannedAt = time.Now().UTC()

	e.log.Info("LookupBarcode completed", "found", true, "duration", time.Since(start))
	return record, nil
}

// SearchProducts finds products by name and brand substring match and
// maps each to a ProductRecord.
func (e *Engine) SearchProducts(ctx context.Context, name, brand string, limit int) ([]types.ProductRecord, error) {
	start := time.Now()
	e.log.Debug("SearchProducts starting", "name", name, "brand", brand, "limit", limit)

	query := `
		SELECT product_name, brands, nutriments, ingredients_text, nutriscore_grade
		FROM read_parquet(?)
		WHERE 1=1`
	args := []interface{}{e.parquetPath}

	if name != "" {
		query += ` AND product_name ILIKE ?`
		args = append(args, fmt.Sprintf("%%%s%%", name))
	}
	if brand != "" {
		query += ` AND brands ILIKE ?`
		args = append(args, fmt.Sprintf("%%%s%%", brand))
	}

	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		e.log.Error("search query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []types.ProductRecord
	for rows.Next() {
		record, err := e.scanRecord(rows)
		if err != nil {
			// One unreadable row should not fail the whole search.
			e.log.Error("row scan failed", "error", err)
			continue
		}
		record.ScanMethod = types.ScanMethodSearch
		record.ScannedAt = time.Now().UTC()
		results = append(results, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows error: %w", err)
	}

	e.log.Info("SearchProducts completed", "count", len(results), "duration", time.Since(start))
	return results, nil
}

// scanRecord reads one result row and converts it to a ProductRecord.
func (e *Engine) scanRecord(rows *sql.Rows) (*types.ProductRecord, error) {
	var productName, brands, nutriments, ingredients, gradeTag sql.NullString

	if err := rows.Scan(&productName, &brands, &nutriments, &ingredients, &gradeTag); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	record := &types.ProductRecord{
		Name:             productName.String,
		Brand:            brands.String,
		IngredientsText:  ingredients.String,
		SuppliedGradeTag: gradeTag.String,
		Nutrients:        map[types.NutrientKey]*float64{},
	}

	if nutriments.Valid && nutriments.String != "" {
		record.Nutrients = parseNutriments(nutriments.String, e.log)
	}
	return record, nil
}

// parseNutriments maps the raw nutriments JSON onto the closed schema.
// Unparseable JSON degrades to an empty map rather than an error: a
// product without usable nutrients still gets analyzed, with every rule
// evaluating against zero.
func parseNutriments(raw string, log *slog.Logger) map[types.NutrientKey]*float64 {
	nutrients := map[types.NutrientKey]*float64{}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Debug("failed to parse nutriments JSON", "error", err)
		return nutrients
	}

	for rawKey, key := range nutrimentKeyMap {
		if value, ok := parsed[rawKey]; ok {
			if f, ok := value.(float64); ok {
				v := f
				nutrients[key] = &v
			}
		}
	}
	return nutrients
}

// TestConnection verifies DuckDB can read the parquet file.
func (e *Engine) TestConnection(ctx context.Context) error {
	start := time.Now()
	e.log.Debug("testing duckdb connection and parquet file")

	query := `SELECT COUNT(*) FROM read_parquet(?)`
	var count int64

	if err := e.db.QueryRowContext(ctx, query, e.parquetPath).Scan(&count); err != nil {
		e.log.Error("connection test failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("connection test failed: %w", err)
	}

	e.log.Info("connection test successful", "total_records", count, "duration", time.Since(start))
	return nil
}
