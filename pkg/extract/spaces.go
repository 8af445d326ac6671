package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/japaniel/lexgraph/pkg/config"
	"github.com/japaniel/lexgraph/pkg/embedding"
)

// LoadSpaces resolves, reads and aligns the vector space of every language,
// at most workers files at a time. Every language needs a vectors locator in
// sources; this is checked before any file is opened. Each space is fully
// aligned before it is returned.
func LoadSpaces(ctx context.Context, languages []string, sources map[string]config.EmbeddingConfig, cacheDir string, workers int, logger *slog.Logger) (map[string]*embedding.Space, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, lang := range languages {
		if sources[lang].Vectors == "" {
			return nil, fmt.Errorf("embeddings.%s.vectors is required", lang)
		}
	}

	var mu sync.Mutex
	spaces := make(map[string]*embedding.Space, len(languages))

	wp := NewWorkerPool(workers, len(languages))
	wp.Start(ctx)
	for _, lang := range languages {
		src := sources[lang]
		err := wp.Submit(func(ctx context.Context) error {
			s, err := loadSpace(ctx, lang, src, cacheDir, logger)
			if err != nil {
				return err
			}
			mu.Lock()
			spaces[lang] = s
			mu.Unlock()
			return nil
		})
		if err != nil {
			wp.Wait()
			return nil, err
		}
	}
	if err := wp.Wait(); err != nil {
		return nil, err
	}
	return spaces, nil
}

func loadSpace(ctx context.Context, lang string, src config.EmbeddingConfig, cacheDir string, logger *slog.Logger) (*embedding.Space, error) {
	start := time.Now()
	path, err := embedding.Resolve(ctx, src.Vectors, cacheDir)
	if err != nil {
		return nil, fmt.Errorf("%s vectors: %w", lang, err)
	}
	s, err := embedding.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s vectors: %w", lang, err)
	}
	if src.Alignment != "" {
		m, err := embedding.LoadMatrix(src.Alignment)
		if err != nil {
			return nil, fmt.Errorf("%s alignment: %w", lang, err)
		}
		if err := s.ApplyTransform(m); err != nil {
			return nil, fmt.Errorf("%s alignment: %w", lang, err)
		}
	}
	logger.Info("Loaded vectors",
		slog.String("language", lang),
		slog.String("path", path),
		slog.Int("words", s.Len()),
		slog.Int("dim", s.Dim()),
		slog.Bool("aligned", src.Alignment != ""),
		slog.Duration("elapsed", time.Since(start)))
	return s, nil
}
