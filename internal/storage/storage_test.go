package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var sampleReviews = []types.Review{
	{
		Title:       "Great, really",
		Rate:        "50",
		Date:        "2023年04月01日",
		Author:      "Taro",
		Purchased:   true,
		Review:      "line one\nline two",
		SelectGenre: "Comedy;Romance",
	},
	{Title: "Meh", Attention: true},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReviews); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "title,rate,date,author,purchased,attention,review,select_genre" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][0] != "Great, really" || records[1][4] != "true" || records[1][6] != "line one\nline two" {
		t.Errorf("unexpected first row %v", records[1])
	}
	if records[2][4] != "false" || records[2][5] != "true" {
		t.Errorf("unexpected flags in second row %v", records[2])
	}
}

func TestCSVStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	s, err := NewCSVStorage(path, testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Store(sampleReviews[:1]); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := s.Store(sampleReviews[1:]); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected a single header and 2 rows, got %d records", len(records))
	}
}

func TestCSVStorageEmptyKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	s, err := NewCSVStorage(path, testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != strings.Join(types.ReviewFields, ",") {
		t.Errorf("expected header only, got %q", data)
	}
}

func TestJSONStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	s, err := NewJSONStorage(path, testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = s.Store(sampleReviews)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, _ := os.ReadFile(path)
	var got []types.Review
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0] != sampleReviews[0] {
		t.Errorf("unexpected JSON contents: %+v", got)
	}
}

func TestJSONLStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	s, err := NewJSONLStorage(path, testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = s.Store(sampleReviews)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"select_genre":"Comedy;Romance"`) {
		t.Errorf("unexpected first line %s", lines[0])
	}
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.StorageConfig{Type: "jsonl", OutputPath: dir}

	s, err := New(cfg, "RJ1", "", testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Name() != "jsonl" {
		t.Errorf("expected jsonl backend, got %s", s.Name())
	}
	_ = s.Close()

	if _, err := os.Stat(filepath.Join(dir, "RJ1_reviews.jsonl")); err != nil {
		t.Errorf("expected default file name: %v", err)
	}

	if _, err := NewFileStorage("xml", filepath.Join(dir, "x"), testLogger); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestNewFansOutToSeveralTypes(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.StorageConfig{Type: "csv, jsonl", OutputPath: dir}

	s, err := New(cfg, "RJ2", "", testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.(*MultiStorage); !ok {
		t.Fatalf("expected MultiStorage, got %T", s)
	}
	if err := s.Store(sampleReviews); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, name := range []string{"RJ2_reviews.csv", "RJ2_reviews.jsonl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestFilePath(t *testing.T) {
	single := &config.StorageConfig{Type: "csv", OutputPath: "out"}
	multi := &config.StorageConfig{Type: "csv,json", OutputPath: "out"}

	tests := []struct {
		cfg        *config.StorageConfig
		outputPath string
		kind       string
		want       string
	}{
		{single, "", "csv", filepath.Join("out", "RJ3_reviews.csv")},
		{single, "reviews.txt", "csv", "reviews.txt"},
		{multi, "dump/reviews.csv", "json", "dump/reviews.json"},
		{multi, "dump/reviews", "csv", "dump/reviews.csv"},
	}
	for _, tt := range tests {
		if got := FilePath(tt.cfg, "RJ3", tt.outputPath, tt.kind); got != tt.want {
			t.Errorf("FilePath(%q, %q, %q) = %q, want %q", tt.cfg.Type, tt.outputPath, tt.kind, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownTypeInList(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.StorageConfig{Type: "csv,xml", OutputPath: dir}
	if _, err := New(cfg, "RJ4", "", testLogger); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestReviewDocumentInline(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	docs := newReviewDocuments("RJ323439", sampleReviews[:1], at)

	raw, err := bson.Marshal(docs[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["product_id"] != "RJ323439" {
		t.Errorf("product_id: got %v", m["product_id"])
	}
	if m["select_genre"] != "Comedy;Romance" || m["review"] != "line one\nline two" {
		t.Errorf("review fields should be inlined, got %v", m)
	}
}

type stubStorage struct {
	name   string
	err    error
	stored int
	closed bool
}

func (s *stubStorage) Store(r []types.Review) error {
	s.stored += len(r)
	return s.err
}
func (s *stubStorage) Close() error { s.closed = true; return nil }
func (s *stubStorage) Name() string { return s.name }

func TestMultiStorage(t *testing.T) {
	failing := &stubStorage{name: "bad", err: errors.New("disk full")}
	ok := &stubStorage{name: "ok"}
	m := NewMultiStorage([]Storage{failing, ok}, testLogger)

	if err := m.Store(sampleReviews); err == nil {
		t.Error("expected first backend error")
	}
	if ok.stored != 2 {
		t.Error("healthy backend should still receive reviews")
	}
	if err := m.Close(); err != nil || !failing.closed || !ok.closed {
		t.Error("all backends should be closed")
	}
}
