package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output != "fastText" {
		t.Errorf("expected default output fastText, got %s", cfg.Output)
	}
	if len(cfg.Languages) != 3 || cfg.Languages[0] != "eng" || cfg.Languages[1] != "jpn" || cfg.Languages[2] != "fra" {
		t.Errorf("expected default languages eng, jpn, fra, got %v", cfg.Languages)
	}
	if got := cfg.Embeddings["jpn"]; got.Vectors != "wiki.ja.vec" || got.Alignment != "alignment_matrices/ja.txt" {
		t.Errorf("unexpected jpn embeddings %+v", got)
	}
	if cfg.CacheDir == "" {
		t.Error("expected a default cache dir")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing output",
			modify:  func(c *Config) { c.Output = "" },
			wantErr: true,
		},
		{
			name:    "missing ontology",
			modify:  func(c *Config) { c.Ontology = "" },
			wantErr: true,
		},
		{
			name:    "no languages",
			modify:  func(c *Config) { c.Languages = nil },
			wantErr: true,
		},
		{
			name:    "duplicate language",
			modify:  func(c *Config) { c.Languages = []string{"eng", "eng"} },
			wantErr: true,
		},
		{
			name:    "language without vectors",
			modify:  func(c *Config) { c.Languages = append(c.Languages, "deu") },
			wantErr: false,
		},
		{
			name:    "subset of languages",
			modify:  func(c *Config) { c.Languages = []string{"fra"} },
			wantErr: false,
		},
		{
			name:    "zero workers",
			modify:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lexgraph.yaml")

	content := `
output: out
languages: [eng, deu]
embeddings:
  deu:
    vectors: "https://example.com/wiki.de.vec.gz"
    alignment: alignment_matrices/de.txt
workers: 4
oov_report: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Output != "out" {
		t.Errorf("expected output out, got %s", cfg.Output)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[1] != "deu" {
		t.Errorf("expected languages [eng deu], got %v", cfg.Languages)
	}
	if cfg.Embeddings["deu"].Vectors != "https://example.com/wiki.de.vec.gz" {
		t.Errorf("unexpected deu vectors %q", cfg.Embeddings["deu"].Vectors)
	}
	// Defaults not mentioned in the file are kept.
	if cfg.Embeddings["eng"].Vectors != "wiki.en.vec" {
		t.Errorf("expected default eng vectors, got %q", cfg.Embeddings["eng"].Vectors)
	}
	if cfg.Ontology != "wordnet.json" {
		t.Errorf("expected default ontology, got %s", cfg.Ontology)
	}
	if cfg.Workers != 4 || !cfg.OOVReport {
		t.Errorf("expected workers 4 and oov report, got %d %v", cfg.Workers, cfg.OOVReport)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("languages: {eng"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveToFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "lexgraph.yaml")

	cfg := DefaultConfig()
	cfg.Languages = []string{"fra", "eng"}
	cfg.MetricsFile = "metrics.prom"
	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if len(loaded.Languages) != 2 || loaded.Languages[0] != "fra" {
		t.Errorf("expected languages [fra eng], got %v", loaded.Languages)
	}
	if loaded.MetricsFile != "metrics.prom" {
		t.Errorf("expected metrics file, got %q", loaded.MetricsFile)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Output: "elsewhere",
		Embeddings: map[string]EmbeddingConfig{
			"eng": {Vectors: "cc.en.300.vec"},
		},
		SQLiteExport: "lex.db",
	}

	base.Merge(override)

	if base.Output != "elsewhere" {
		t.Errorf("expected merged output, got %s", base.Output)
	}
	if got := base.Embeddings["eng"]; got.Vectors != "cc.en.300.vec" || got.Alignment != "alignment_matrices/en.txt" {
		t.Errorf("expected vectors replaced and alignment kept, got %+v", got)
	}
	if base.Ontology != "wordnet.json" {
		t.Errorf("expected ontology unchanged, got %s", base.Ontology)
	}
	if base.SQLiteExport != "lex.db" {
		t.Errorf("expected sqlite export, got %s", base.SQLiteExport)
	}
	if len(base.Languages) != 3 {
		t.Errorf("expected languages unchanged, got %v", base.Languages)
	}

	base.Merge(nil)
}

func TestLoaderFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "fastText" {
		t.Errorf("expected defaults, got output %s", cfg.Output)
	}

	if err := os.WriteFile(ProjectConfigFile, []byte("output: local\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "local" {
		t.Errorf("expected project config to be picked up, got %s", cfg.Output)
	}
}
