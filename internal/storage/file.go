package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// WriteCSV writes reviews as CSV with a header row of field names.
func WriteCSV(w io.Writer, reviews []types.Review) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.ReviewFields); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, r := range reviews {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func createOutput(outputPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

// --- JSON Storage ---

// JSONStorage buffers reviews and writes them as one JSON array on Close.
type JSONStorage struct {
	path    string
	reviews []types.Review
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONStorage{
		path:    outputPath,
		reviews: make([]types.Review, 0),
		logger:  logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(reviews []types.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, reviews...)
	s.logger.Debug("reviews buffered", "count", len(reviews), "total", len(s.reviews))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.reviews); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSON: %w", err)}
	}

	s.logger.Info("JSON written", "path", s.path, "reviews", len(s.reviews))
	return nil
}

// --- JSONL Storage ---

// JSONLStorage writes one JSON object per line as reviews arrive.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage (streaming writes).
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	f, err := createOutput(outputPath)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    enc,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(reviews []types.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reviews {
		if err := s.enc.Encode(r); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSONL: %w", err)}
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "reviews", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// --- CSV Storage ---

// CSVStorage writes reviews as CSV rows under a fixed header.
type CSVStorage struct {
	path          string
	file          *os.File
	writer        *csv.Writer
	headerWritten bool
	mu            sync.Mutex
	count         int
	logger        *slog.Logger
}

// NewCSVStorage creates a new CSV file storage.
func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	f, err := createOutput(outputPath)
	if err != nil {
		return nil, err
	}
	return &CSVStorage{
		path:   outputPath,
		file:   f,
		writer: csv.NewWriter(f),
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(reviews []types.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeHeader(); err != nil {
		return err
	}
	for _, r := range reviews {
		if err := s.writer.Write(r.Row()); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("write CSV row: %w", err)}
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) writeHeader() error {
	if s.headerWritten {
		return nil
	}
	if err := s.writer.Write(types.ReviewFields); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("write CSV header: %w", err)}
	}
	s.headerWritten = true
	return nil
}

func (s *CSVStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An empty export still gets its header.
	if err := s.writeHeader(); err != nil {
		return err
	}
	s.logger.Info("CSV written", "path", s.path, "reviews", s.count)
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// NewFileStorage creates the file-based storage for storageType at outputPath.
func NewFileStorage(storageType, outputPath string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(outputPath, logger)
	case "jsonl":
		return NewJSONLStorage(outputPath, logger)
	case "csv":
		return NewCSVStorage(outputPath, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
