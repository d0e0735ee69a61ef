// Package dataset keeps the local copy of the product parquet dataset
// available for the retrieval engine: present-or-download with a JSON
// metadata sidecar for freshness bookkeeping.
package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Metadata records provenance of the downloaded dataset file.
type Metadata struct {
	SHA256       string    `json:"sha256"`
	DownloadedAt time.Time `json:"downloaded_at"`
	ETag         string    `json:"etag,omitempty"`
	Size         int64     `json:"size"`
}

// Manager downloads the parquet dataset once and records metadata.
type Manager struct {
	datasetURL   string
	parquetPath  string
	metadataPath string
	client       *http.Client
	log          *slog.Logger
}

// NewManager creates a dataset manager.
func NewManager(datasetURL, parquetPath, metadataPath string, logger *slog.Logger) *Manager {
	return &Manager{
		datasetURL:   datasetURL,
		parquetPath:  parquetPath,
		metadataPath: metadataPath,
		client:       &http.Client{Timeout: 30 * time.Minute},
		log:          logger,
	}
}

// EnsureDataset makes sure the parquet file exists locally, downloading
// it when absent. An existing file is trusted; freshness refresh is the
// operator's call via the fetch-db mode.
func (m *Manager) EnsureDataset(ctx context.Context) error {
	start := time.Now()
	m.log.Info("ensuring dataset is available", "parquet_path", m.parquetPath)

	if _, err := os.Stat(m.parquetPath); err == nil {
		m.log.Info("dataset already present", "duration", time.Since(start))
		return nil
	}

	if err := m.download(ctx); err != nil {
		return fmt.Errorf("failed to download dataset: %w", err)
	}

	m.log.Info("dataset ensured", "duration", time.Since(start))
	return nil
}

// download fetches the dataset to a temp file, records metadata and
// moves it into place so a partial download never becomes the live file.
func (m *Manager) download(ctx context.Context) error {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(m.parquetPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmpPath := m.parquetPath + ".tmp"
	etag, written, err := m.fetch(ctx, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	sha, err := computeSHA256(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to compute sha256: %w", err)
	}

	meta := &Metadata{
		SHA256:       sha,
		DownloadedAt: time.Now().UTC(),
		ETag:         etag,
		Size:         written,
	}
	if err := m.saveMetadata(meta); err != nil {
		m.log.Warn("failed to save dataset metadata", "error", err)
	}

	if err := os.Rename(tmpPath, m.parquetPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}

	m.log.Info("dataset downloaded", "bytes", written, "sha256", sha[:16]+"...", "duration", time.Since(start))
	return nil
}

func (m *Manager) fetch(ctx context.Context, path string) (etag string, written int64, err error) {
	m.log.Info("downloading dataset", "url", m.datasetURL, "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.datasetURL, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	written, err = io.Copy(file, resp.Body)
	if err != nil {
		return "", 0, err
	}
	return resp.Header.Get("ETag"), written, nil
}

// LoadMetadata reads the metadata sidecar, if present.
func (m *Manager) LoadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(m.metadataPath)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse dataset metadata: %w", err)
	}
	return &meta, nil
}

func (m *Manager) saveMetadata(meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.metadataPath, data, 0o644)
}

func computeSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
