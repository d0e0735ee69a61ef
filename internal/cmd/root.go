package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodsnap/nutrition-engine/internal/analysis"
	"github.com/foodsnap/nutrition-engine/internal/auth"
	"github.com/foodsnap/nutrition-engine/internal/config"
	"github.com/foodsnap/nutrition-engine/internal/dataset"
	"github.com/foodsnap/nutrition-engine/internal/history"
	"github.com/foodsnap/nutrition-engine/internal/mcpgo"
	"github.com/foodsnap/nutrition-engine/internal/retrieval"
	"github.com/foodsnap/nutrition-engine/internal/server"
	"github.com/foodsnap/nutrition-engine/internal/service"
	"github.com/foodsnap/nutrition-engine/internal/storage"
	"github.com/foodsnap/nutrition-engine/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nutrition-engine",
	Short: "Nutrition analysis and reconciliation engine",
	Long: `Nutrition Engine analyzes product records (ingredients and per-100g
nutrient values) into classified safety reports, dietary compatibility,
a 0-100 health score with letter grade, and reconciles each analysis
into a bounded, deduplicated scan history.

The engine runs in three modes:

1. MCP STDIO Mode (--stdio): For local MCP client integration
   - Uses stdio pipes for communication
   - No authentication required

2. MCP HTTP Mode (default): For remote deployment
   - Exposes the MCP endpoint over HTTP with Bearer token auth
   - /health is unauthenticated

3. REST Mode (--rest): Plain HTTP JSON API
   - POST /analyze, POST /barcode/analyze, GET /history,
     POST /favorite, GET /export

A fetch mode (--fetch-db) downloads the product dataset used for
barcode lookups and exits. Barcode lookup can be disabled entirely with
--no-dataset for hosts that only submit manual records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println(version.String())
			return nil
		}

		if fetchDB, _ := cmd.Flags().GetBool("fetch-db"); fetchDB {
			return runFetchDBMode(cmd)
		}

		stdio, _ := cmd.Flags().GetBool("stdio")
		rest, _ := cmd.Flags().GetBool("rest")

		switch {
		case stdio:
			return runStdioMode(cmd)
		case rest:
			return runRESTMode(cmd)
		default:
			return runHTTPMode(cmd)
		}
	},
}

func init() {
	rootCmd.Flags().Bool("stdio", false, "Run the MCP server on stdio for local client integration")
	rootCmd.Flags().Bool("rest", false, "Run the plain HTTP JSON API instead of the MCP server")
	rootCmd.Flags().Bool("fetch-db", false, "Fetch the product dataset and exit")
	rootCmd.Flags().Bool("no-dataset", false, "Run without the product dataset (disables barcode lookup)")
	rootCmd.Flags().Bool("version", false, "Print version and exit")
}

// runFetchDBMode fetches the dataset and exits.
func runFetchDBMode(cmd *cobra.Command) error {
	logger := config.NewTextLogger(os.Stdout)
	cfg := config.Load()

	logger.Info("starting dataset fetch",
		"mode", "fetch-db",
		"parquet_path", cfg.ParquetPath)
	logger.Info("large dataset warning",
		"message", "the product dataset is multiple GB, the initial download can take a while")

	manager := dataset.NewManager(cfg.ParquetURL, cfg.ParquetPath, cfg.MetadataPath, logger)
	if err := manager.EnsureDataset(context.Background()); err != nil {
		logger.Error("failed to fetch dataset", "error", err)
		return err
	}

	logger.Info("dataset fetch completed",
		"parquet_path", cfg.ParquetPath,
		"metadata_path", cfg.MetadataPath)
	return nil
}

// buildService wires storage, retrieval and the analysis core together.
func buildService(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*service.Service, func(), error) {
	store, err := storage.Open(cfg.HistoryDBPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}

	var source retrieval.Source
	noDataset, _ := cmd.Flags().GetBool("no-dataset")
	if !noDataset {
		manager := dataset.NewManager(cfg.ParquetURL, cfg.ParquetPath, cfg.MetadataPath, logger)
		if err := manager.EnsureDataset(context.Background()); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to ensure dataset: %w", err)
		}

		source, err = retrieval.NewSource(cfg.ParquetPath, logger)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to create product source: %w", err)
		}
		if err := source.TestConnection(context.Background()); err != nil {
			source.Close()
			store.Close()
			return nil, nil, fmt.Errorf("failed to test product source: %w", err)
		}
	}

	analyzer := analysis.NewAnalyzer(logger)
	reconciler := history.NewReconciler(history.Options{
		MergeWindow:     cfg.MergeWindow(),
		DuplicateWindow: cfg.DuplicateWindow(),
		MaxEntries:      cfg.MaxHistoryEntries,
	})

	svc := service.New(analyzer, reconciler, store, source, logger)
	cleanup := func() {
		if source != nil {
			source.Close()
		}
		store.Close()
	}
	return svc, cleanup, nil
}

// runStdioMode runs the MCP server on stdio.
func runStdioMode(cmd *cobra.Command) error {
	logger := config.NewLogger(true)
	cfg := config.Load()

	logger.Info("starting nutrition engine in STDIO mode",
		"mode", "stdio",
		"auth", "not required for stdio mode",
		"transport", "stdio pipes")

	svc, cleanup, err := buildService(cmd, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer cleanup()

	authenticator := newAuthenticator(cfg)
	mcpSrv := mcpgo.NewServer(svc, authenticator, logger)
	return mcpSrv.ServeStdio()
}

// runHTTPMode runs the MCP server over HTTP.
func runHTTPMode(cmd *cobra.Command) error {
	logger := config.NewLogger(false)
	cfg := config.Load()

	logger.Info("starting nutrition engine in HTTP mode",
		"mode", "http",
		"auth", "Bearer token required (except /health)",
		"port", cfg.Port)

	svc, cleanup, err := buildService(cmd, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer cleanup()

	authenticator := newAuthenticator(cfg)
	mcpSrv := mcpgo.NewServer(svc, authenticator, logger)
	return mcpSrv.ServeHTTP(":" + cfg.Port)
}

// runRESTMode runs the plain HTTP JSON API.
func runRESTMode(cmd *cobra.Command) error {
	logger := config.NewLogger(false)
	cfg := config.Load()

	logger.Info("starting nutrition engine in REST mode",
		"mode", "rest",
		"port", cfg.Port)

	svc, cleanup, err := buildService(cmd, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer cleanup()

	srv := server.New(cfg, svc, logger)
	return srv.Start(context.Background())
}

func newAuthenticator(cfg *config.Config) *auth.BearerTokenAuth {
	return auth.NewBearerTokenAuth(cfg.AuthToken)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// Run is the main entry point for the CLI application
func Run() error {
	return Execute()
}
