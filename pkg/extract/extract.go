// Package extract runs an extraction end to end: it joins an ontology with
// per-language vector spaces, projects the synset relations and writes the
// dataset with its manifest and optional reports.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/japaniel/lexgraph/pkg/dataset"
	"github.com/japaniel/lexgraph/pkg/db"
	"github.com/japaniel/lexgraph/pkg/index"
	"github.com/japaniel/lexgraph/pkg/morph"
	"github.com/japaniel/lexgraph/pkg/ontology"
)

// Extractor holds everything one run needs. Graph, Spaces, Languages and
// OutputDir are required.
type Extractor struct {
	Graph ontology.Graph
	// Spaces holds one aligned vector space per language.
	Spaces    map[string]index.VectorSpace
	Languages []string
	OutputDir string
	// Relations lists relation symbols to project; nil means all of
	// index.Relations.
	Relations []string

	// Resource and Vectors only feed the banner.
	Resource string
	Vectors  []string

	// OOVReport writes oov.txt. Analyzer adds Japanese base forms to its
	// candidates and may be nil.
	OOVReport bool
	Analyzer  *morph.Analyzer

	// SQLiteExport, when set, receives a copy of the dataset.
	SQLiteExport string
	// Metrics, when set, is updated at the end of the run and written to
	// MetricsFile if that is set too.
	Metrics     *Metrics
	MetricsFile string

	// Logger is used for structured progress. nil means slog.Default().
	Logger *slog.Logger
	// Out receives the human-readable report. nil means os.Stdout.
	Out io.Writer
	// OnPhase is called after each phase completes.
	OnPhase func(phase string, elapsed time.Duration)
}

// Phase is the wall time of one step of a run.
type Phase struct {
	Name    string
	Elapsed time.Duration
}

// Summary describes a finished run.
type Summary struct {
	Languages     []string
	Unsupported   []string
	Stats         index.Stats
	Projections   []*index.Projection
	Files         []dataset.FileInfo
	Manifest      *dataset.Manifest
	ResidentBytes uint64
	Phases        []Phase
}

// Run executes the extraction. Configuration problems (unknown relation
// symbol, missing vector space) are reported before the ontology is
// traversed; nothing is written to OutputDir until every table has been
// built in memory.
func (e *Extractor) Run(ctx context.Context) (*Summary, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := e.Out
	if out == nil {
		out = os.Stdout
	}
	symbols := e.Relations
	if symbols == nil {
		symbols = index.Symbols()
	}

	for _, sym := range symbols {
		if _, err := index.LookupRelation(sym); err != nil {
			return nil, err
		}
	}
	if e.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	sum := &Summary{}
	sum.Languages, sum.Unsupported = index.FilterLanguages(e.Graph, e.Languages)
	for _, lang := range sum.Unsupported {
		fmt.Fprintf(out, "language: '%s' is not supported, skipping\n", lang)
		logger.Warn("Language not supported by ontology", slog.String("language", lang))
	}
	for _, lang := range sum.Languages {
		if e.Spaces[lang] == nil {
			return nil, fmt.Errorf("no vector space loaded for %s", lang)
		}
	}

	printBanner(out, e.Resource, sum.Languages, e.Vectors, e.OutputDir)

	phase := func(name string, start time.Time) {
		elapsed := time.Since(start)
		sum.Phases = append(sum.Phases, Phase{Name: name, Elapsed: elapsed})
		logger.Debug("Phase done", slog.String("phase", name), slog.Duration("elapsed", elapsed))
		if e.OnPhase != nil {
			e.OnPhase(name, elapsed)
		}
	}

	// Joint pass.
	start := time.Now()
	ix, st, err := index.Build(e.Graph, e.Spaces, sum.Languages)
	if err != nil {
		return nil, fmt.Errorf("index synsets: %w", err)
	}
	sum.Stats = st
	phase("index", start)
	printStats(out, st)
	logger.Info("Indexed synsets",
		slog.Int("words", st.WordsResolved),
		slog.Int("oov", st.OOV),
		slog.Int("synsets_live", st.SynsetsLive),
		slog.Int("synsets_total", st.SynsetsTotal),
		slog.Int("senses", st.SensesEmitted),
		slog.Int("duplicates", st.Duplicates))

	if rss, err := residentMemory(); err != nil {
		logger.Warn("Failed to read resident memory", slog.String("error", err.Error()))
	} else {
		sum.ResidentBytes = rss
		logger.Info("Resident memory after joint pass", slog.Uint64("bytes", rss))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Relation projection.
	start = time.Now()
	projs, err := index.ProjectAll(ix, e.Graph, symbols)
	if err != nil {
		return nil, fmt.Errorf("project relations: %w", err)
	}
	sum.Projections = projs
	phase("project", start)
	for _, p := range projs {
		printProjection(out, p)
		logger.Info("Projected relation",
			slog.String("relation", p.Relation.Name),
			slog.Int("edges", len(p.Edges)),
			slog.Int("dropped", p.Dropped))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Output.
	start = time.Now()
	w, err := dataset.NewWriter(e.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	files, err := w.WriteAll(ix, projs)
	if err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	if e.OOVReport {
		fi, err := w.WriteLines(dataset.OOVFile, oovReport(ix.Vocabulary().OOV(), e.Spaces, e.Analyzer))
		if err != nil {
			return nil, fmt.Errorf("write oov report: %w", err)
		}
		files = append(files, fi)
	}
	sum.Files = files
	sum.Manifest = dataset.NewManifest(sum.Languages, sum.Unsupported, projs, st, files)
	if err := dataset.WriteManifest(e.OutputDir, sum.Manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	phase("write", start)
	logger.Info("Wrote dataset", slog.String("dir", e.OutputDir), slog.Int("files", len(files)),
		slog.String("run_id", sum.Manifest.RunID))

	if e.SQLiteExport != "" {
		start = time.Now()
		if err := exportSQLite(e.SQLiteExport, ix, projs); err != nil {
			return nil, err
		}
		phase("sqlite", start)
		logger.Info("Exported dataset to SQLite", slog.String("path", e.SQLiteExport))
	}

	if e.Metrics != nil {
		e.Metrics.Observe(sum)
		if e.MetricsFile != "" {
			if err := e.Metrics.WriteTextfile(e.MetricsFile); err != nil {
				return nil, fmt.Errorf("write metrics: %w", err)
			}
		}
	}

	fmt.Fprintln(out, "DONE")
	return sum, nil
}

func exportSQLite(path string, ix *index.Index, projs []*index.Projection) error {
	conn, err := db.Open(path)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.ExportDataset(conn, ix, projs, 1000); err != nil {
		return err
	}
	return nil
}
