package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github/itish2003/portfolio-rag/models"
)

// IndexingService chunks documents, embeds the chunks and writes them to the
// vector index. It is an administrative path and must not run concurrently
// with queries against the same index.
type IndexingService struct {
	embedder  Embedder
	index     VectorIndex
	splitter  textsplitter.TextSplitter
	batchSize int
	logger    *zap.Logger
}

// NewIndexingService creates a new indexing service.
func NewIndexingService(embedder Embedder, index VectorIndex, splitter textsplitter.TextSplitter, batchSize int, logger *zap.Logger) *IndexingService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IndexingService{
		embedder:  embedder,
		index:     index,
		splitter:  splitter,
		batchSize: batchSize,
		logger:    logger,
	}
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	Documents int
	Chunks    int
	Skipped   int
}

// IngestDocuments indexes every chunk of docs. Chunks whose embedding fails
// are skipped; an index write failure, including an id collision, aborts the run.
func (s *IndexingService) IngestDocuments(ctx context.Context, docs []models.Document) (IngestReport, error) {
	report := IngestReport{Documents: len(docs)}

	base, err := s.index.Count(ctx)
	if err != nil {
		return report, err
	}

	batch := make([]models.IndexedEntry, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.index.Add(ctx, batch); err != nil {
			return err
		}
		report.Chunks += len(batch)
		batch = batch[:0]
		return nil
	}

	seq := base
	for _, doc := range docs {
		s.logger.Info("indexer: processing document", zap.String("title", truncateRunes(doc.Title, 50)), zap.String("url", doc.URL))
		chunks, err := s.splitter.SplitText(doc.FullText)
		if err != nil {
			return report, fmt.Errorf("split %s: %w", doc.URL, err)
		}

		for i, text := range chunks {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			vector, err := s.embedder.Embed(ctx, text, EmbedModeDocument)
			if err != nil {
				s.logger.Warn("indexer: skipping chunk", zap.String("url", doc.URL), zap.Int("chunk_index", i), zap.Error(err))
				report.Skipped++
				continue
			}
			seq++
			batch = append(batch, models.IndexedEntry{
				ID:        fmt.Sprintf("case_%d", seq),
				Embedding: vector,
				Chunk: models.Chunk{
					Text: text,
					ChunkMetadata: models.ChunkMetadata{
						URL:         doc.URL,
						Title:       doc.Title,
						Description: doc.Description,
						ChunkIndex:  i,
						TotalChunks: len(chunks),
					},
				},
			})
			if len(batch) >= s.batchSize {
				if err := flush(); err != nil {
					return report, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return report, err
	}

	s.logger.Info("indexer: ingestion finished",
		zap.Int("documents", report.Documents),
		zap.Int("chunks", report.Chunks),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// IngestFile loads documents from path and indexes them.
func (s *IndexingService) IngestFile(ctx context.Context, path string) (IngestReport, error) {
	s.logger.Info("indexer: loading documents", zap.String("path", path))
	docs, err := LoadDocuments(path)
	if err != nil {
		return IngestReport{}, fmt.Errorf("load %s: %w", path, err)
	}
	return s.IngestDocuments(ctx, docs)
}

// SeedIfEmpty indexes the primary corpus when the index is empty, falling back
// to the secondary corpus if the primary cannot be ingested.
func (s *IndexingService) SeedIfEmpty(ctx context.Context, primary, fallback string) (IngestReport, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return IngestReport{}, err
	}
	if count > 0 {
		return IngestReport{}, nil
	}

	s.logger.Info("indexer: collection is empty, seeding", zap.String("path", primary))
	report, err := s.IngestFile(ctx, primary)
	if err == nil {
		return report, nil
	}
	s.logger.Warn("indexer: seeding from primary corpus failed", zap.String("path", primary), zap.Error(err))
	if fallback == "" {
		return report, err
	}

	report, fbErr := s.IngestFile(ctx, fallback)
	if fbErr != nil {
		return report, errors.Join(err, fbErr)
	}
	return report, nil
}

// Reindex drops the collection and ingests path from scratch.
func (s *IndexingService) Reindex(ctx context.Context, path string) (IngestReport, error) {
	if err := s.index.Reset(ctx); err != nil {
		return IngestReport{}, err
	}
	return s.IngestFile(ctx, path)
}

// WatchCorpus re-indexes path whenever it is written or re-created, until ctx
// is cancelled. The parent directory is watched because many editors replace
// files through rename.
func (s *IndexingService) WatchCorpus(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to add path to watcher: %w", err)
	}
	s.logger.Info("watcher: watching corpus", zap.String("path", target))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isCorpusEvent(event, target) {
				continue
			}
			if _, err := os.Stat(target); err != nil {
				continue
			}
			s.logger.Info("watcher: corpus changed, re-indexing", zap.String("event", event.Op.String()))
			report, err := s.Reindex(ctx, target)
			if err != nil {
				s.logger.Error("watcher: re-index failed", zap.Error(err))
				continue
			}
			s.logger.Info("watcher: re-index done", zap.Int("chunks", report.Chunks))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher: error", zap.Error(err))

		case <-ctx.Done():
			s.logger.Info("watcher: context cancelled, shutting down watcher")
			return nil
		}
	}
}

func isCorpusEvent(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
