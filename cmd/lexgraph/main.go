package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/japaniel/lexgraph/pkg/config"
	"github.com/japaniel/lexgraph/pkg/dataset"
	"github.com/japaniel/lexgraph/pkg/db"
	"github.com/japaniel/lexgraph/pkg/extract"
	"github.com/japaniel/lexgraph/pkg/index"
	"github.com/japaniel/lexgraph/pkg/morph"
	"github.com/japaniel/lexgraph/pkg/ontology"
)

const (
	Version = "0.1.0"
	appName = "lexgraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Cross-lingual lexical graph extractor",
		Long: `lexgraph joins a multilingual wordnet with aligned word embeddings and
writes a densely numbered graph dataset:

- words.txt    covered (word, language) pairs with their vectors
- synsets.txt  every synset with its covered sense keys
- lemmas.txt   word/synset membership in ids
- one file per synset relation (hypernym, similar, verbGroup, antonym)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(extractCmd(), importCmd(), verifyCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func setupLogging(w io.Writer, logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func extractCmd() *cobra.Command {
	var (
		configPath string
		override   config.Config
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build the dataset from an ontology and vector files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(slog.Default()).Load(configPath)
			if err != nil {
				return err
			}
			cfg.Merge(&override)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runExtract(ctx, cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML, default ./"+config.ProjectConfigFile+" if present)")
	cmd.Flags().StringVarP(&override.Output, "output", "o", "", "Output directory")
	cmd.Flags().StringVar(&override.Ontology, "ontology", "", "Ontology JSON dump or SQLite database")
	cmd.Flags().StringSliceVar(&override.Languages, "lang", nil, "Language codes in traversal order (repeatable)")
	cmd.Flags().StringVar(&override.CacheDir, "cache-dir", "", "Download cache for remote vector files")
	cmd.Flags().IntVar(&override.Workers, "workers", 0, "Vector files loaded in parallel")
	cmd.Flags().BoolVar(&override.OOVReport, "oov-report", false, "Write oov.txt with normalization candidates")
	cmd.Flags().StringVar(&override.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&override.SQLiteExport, "sqlite-export", "", "Also export the dataset into this SQLite database")
	return cmd
}

func runExtract(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := slog.Default()

	g, err := extract.LoadOntology(cfg.Ontology)
	if err != nil {
		return err
	}
	logger.Info("Loaded ontology", slog.String("path", cfg.Ontology), slog.Int("synsets", g.Len()),
		slog.Any("languages", g.Languages()))

	// Vectors of unsupported languages are never read.
	kept, _ := index.FilterLanguages(g, cfg.Languages)
	loaded, err := extract.LoadSpaces(ctx, kept, cfg.Embeddings, cfg.CacheDir, cfg.Workers, logger)
	if err != nil {
		return err
	}
	spaces := make(map[string]index.VectorSpace, len(loaded))
	var vectors []string
	for _, lang := range kept {
		spaces[lang] = loaded[lang]
		vectors = append(vectors, cfg.Embeddings[lang].Vectors)
	}

	var analyzer *morph.Analyzer
	if cfg.OOVReport && contains(kept, morph.Japanese) {
		if analyzer, err = morph.NewAnalyzer(); err != nil {
			logger.Warn("Japanese analyzer unavailable, base forms omitted from OOV report", slog.String("error", err.Error()))
			analyzer = nil
		}
	}

	ex := &extract.Extractor{
		Graph:        g,
		Spaces:       spaces,
		Languages:    cfg.Languages,
		OutputDir:    cfg.Output,
		Resource:     cfg.Ontology,
		Vectors:      vectors,
		OOVReport:    cfg.OOVReport,
		Analyzer:     analyzer,
		SQLiteExport: cfg.SQLiteExport,
		MetricsFile:  cfg.MetricsFile,
		Logger:       logger,
		Out:          out,
	}
	if cfg.MetricsFile != "" {
		ex.Metrics = extract.NewMetrics()
	}
	_, err = ex.Run(ctx)
	return err
}

func importCmd() *cobra.Command {
	var (
		dbPath    string
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "import <ontology.json>",
		Short: "Store a JSON ontology dump in SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ontology.LoadJSON(args[0])
			if err != nil {
				return fmt.Errorf("failed to load ontology: %w", err)
			}
			conn, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			st, err := db.ImportGraph(conn, g, batchSize, func(batches, items int) {
				slog.Debug("Committed batch", slog.Int("batches", batches), slog.Int("synsets", items))
			})
			if err != nil {
				return fmt.Errorf("failed to import ontology: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d synsets (%d listings, %d lemmas, %d relations) into %s\n",
				st.Synsets, st.Listings, st.Lemmas, st.Relations, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "lexgraph.db", "Path to SQLite database")
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "Synsets per transaction")
	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <dir>",
		Short: "Check a dataset against its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := dataset.Verify(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: OK\n", rep.Manifest.RunID)
			fmt.Fprintf(out, "   Words: %d\n", rep.Words)
			fmt.Fprintf(out, "  Synset: %d / %d\n", rep.LiveSynsets, rep.Synsets)
			fmt.Fprintf(out, "  Lexems: %d\n", rep.Lemmas)
			for _, name := range rep.Manifest.Relations {
				fmt.Fprintf(out, "  %s: %d\n", name, rep.Edges[name])
			}
			return nil
		},
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
