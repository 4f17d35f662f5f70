package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Document.ChunkSize != 800 {
		t.Errorf("expected chunk size 800, got %d", cfg.Document.ChunkSize)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("expected top_k 3, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SequentialThreshold != 3 {
		t.Errorf("expected sequential threshold 3, got %d", cfg.Retrieval.SequentialThreshold)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Cache.MaxEntries <= 0 {
		t.Error("cache must be bounded by default")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/docquery.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Document.ChunkSize != DefaultConfig().Document.ChunkSize {
		t.Error("expected defaults for missing file")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docquery.yaml")

	data := []byte("document:\n  chunk_size: 512\nretrieval:\n  sequential_threshold: 5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Document.ChunkSize != 512 {
		t.Errorf("expected chunk size 512, got %d", cfg.Document.ChunkSize)
	}
	if cfg.Retrieval.SequentialThreshold != 5 {
		t.Errorf("expected sequential threshold 5, got %d", cfg.Retrieval.SequentialThreshold)
	}
	// Untouched sections keep defaults.
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docquery.yaml")

	cfg := DefaultConfig()
	cfg.Document.ChunkSize = 1024
	cfg.Retrieval.Scorer.KeyPhrase = "grace period"

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Document.ChunkSize != 1024 {
		t.Errorf("expected chunk size 1024, got %d", loaded.Document.ChunkSize)
	}
	if loaded.Retrieval.Scorer.KeyPhrase != "grace period" {
		t.Errorf("unexpected key phrase: %q", loaded.Retrieval.Scorer.KeyPhrase)
	}
}
