// Package config provides configuration loading and management for lexgraph.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete extraction configuration
type Config struct {
	// Output is the directory the dataset is written to
	Output string `yaml:"output"`
	// Ontology is a JSON ontology dump or a SQLite database made by "lexgraph import"
	Ontology string `yaml:"ontology"`
	// Languages lists the language codes to index, in traversal order
	Languages []string `yaml:"languages"`
	// Embeddings maps each language code to its vector source
	Embeddings map[string]EmbeddingConfig `yaml:"embeddings"`
	// CacheDir holds downloaded vector files (default: ~/.cache/lexgraph)
	CacheDir string `yaml:"cache_dir"`
	// Workers bounds how many vector files are loaded at once
	Workers int `yaml:"workers"`
	// OOVReport writes oov.txt with normalization candidates
	OOVReport bool `yaml:"oov_report"`
	// MetricsFile is a Prometheus textfile to write after the run (optional)
	MetricsFile string `yaml:"metrics_file"`
	// SQLiteExport is a database to copy the finished dataset into (optional)
	SQLiteExport string `yaml:"sqlite_export"`
}

// EmbeddingConfig locates one language's vectors
type EmbeddingConfig struct {
	// Vectors is a path, glob pattern, or http(s) URL of a .vec file,
	// optionally .gz or .zst compressed
	Vectors string `yaml:"vectors"`
	// Alignment is an optional matrix file mapping the vectors into the
	// shared space
	Alignment string `yaml:"alignment,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output:    "fastText",
		Ontology:  "wordnet.json",
		Languages: []string{"eng", "jpn", "fra"},
		Embeddings: map[string]EmbeddingConfig{
			"eng": {Vectors: "wiki.en.vec", Alignment: "alignment_matrices/en.txt"},
			"jpn": {Vectors: "wiki.ja.vec", Alignment: "alignment_matrices/ja.txt"},
			"fra": {Vectors: "wiki.fr.vec", Alignment: "alignment_matrices/fr.txt"},
		},
		CacheDir: defaultCacheDir(),
		Workers:  2,
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "lexgraph")
	}
	return filepath.Join(os.TempDir(), "lexgraph")
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if c.Ontology == "" {
		return fmt.Errorf("ontology is required")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("languages must not be empty")
	}
	seen := make(map[string]bool, len(c.Languages))
	for _, lang := range c.Languages {
		if lang == "" {
			return fmt.Errorf("languages must not contain an empty code")
		}
		if seen[lang] {
			return fmt.Errorf("language %s is listed twice", lang)
		}
		seen[lang] = true
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Output != "" {
		c.Output = other.Output
	}
	if other.Ontology != "" {
		c.Ontology = other.Ontology
	}
	if len(other.Languages) > 0 {
		c.Languages = other.Languages
	}
	for lang, e := range other.Embeddings {
		if c.Embeddings == nil {
			c.Embeddings = make(map[string]EmbeddingConfig)
		}
		cur := c.Embeddings[lang]
		if e.Vectors != "" {
			cur.Vectors = e.Vectors
		}
		if e.Alignment != "" {
			cur.Alignment = e.Alignment
		}
		c.Embeddings[lang] = cur
	}
	if other.CacheDir != "" {
		c.CacheDir = other.CacheDir
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.OOVReport {
		c.OOVReport = true
	}
	if other.MetricsFile != "" {
		c.MetricsFile = other.MetricsFile
	}
	if other.SQLiteExport != "" {
		c.SQLiteExport = other.SQLiteExport
	}
}
