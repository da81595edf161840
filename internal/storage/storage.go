package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of reviews.
	Store(reviews []types.Review) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// DefaultFilename returns the export file name for a product, e.g.
// "RJ323439_reviews.csv".
func DefaultFilename(product types.ProductID, format string) string {
	return fmt.Sprintf("%s_reviews.%s", product, format)
}

// Types returns the backends listed in cfg.Type, e.g. "csv,mongodb".
func Types(cfg *config.StorageConfig) []string {
	var kinds []string
	for _, t := range strings.Split(cfg.Type, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			kinds = append(kinds, t)
		}
	}
	return kinds
}

// FilePath returns where a file backend of storageType writes. An explicit
// outputPath wins; with several file backends its extension is replaced
// per type.
func FilePath(cfg *config.StorageConfig, product types.ProductID, outputPath, storageType string) string {
	if outputPath == "" {
		return filepath.Join(cfg.OutputPath, DefaultFilename(product, storageType))
	}
	if len(Types(cfg)) > 1 {
		return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "." + storageType
	}
	return outputPath
}

// New creates the backends selected by cfg.Type. Several comma-separated
// types are combined in a MultiStorage.
func New(cfg *config.StorageConfig, product types.ProductID, outputPath string, logger *slog.Logger) (Storage, error) {
	kinds := Types(cfg)
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no storage type configured")
	}

	backends := make([]Storage, 0, len(kinds))
	for _, kind := range kinds {
		backend, err := newBackend(cfg, product, FilePath(cfg, product, outputPath, kind), kind, logger)
		if err != nil {
			for _, b := range backends {
				_ = b.Close()
			}
			return nil, err
		}
		backends = append(backends, backend)
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewMultiStorage(backends, logger), nil
}

func newBackend(cfg *config.StorageConfig, product types.ProductID, path, kind string, logger *slog.Logger) (Storage, error) {
	if kind == "mongodb" {
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, product, logger)
	}
	return NewFileStorage(kind, path, logger)
}
