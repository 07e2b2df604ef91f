package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"go.uber.org/zap"

	"github/itish2003/portfolio-rag/models"
)

// ChromaIndex is a VectorIndex backed by a Chroma collection using cosine space.
type ChromaIndex struct {
	client chromago.Client
	name   string
	logger *zap.Logger

	mu         sync.RWMutex
	collection chromago.Collection
}

var _ VectorIndex = (*ChromaIndex)(nil)

// NewChromaIndex gets or creates the named collection.
func NewChromaIndex(ctx context.Context, client chromago.Client, name string, logger *zap.Logger) (*ChromaIndex, error) {
	idx := &ChromaIndex{client: client, name: name, logger: logger}
	collection, err := idx.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	idx.collection = collection
	return idx, nil
}

func collectionMetadata() chromago.CollectionMetadata {
	return chromago.NewMetadata(
		chromago.NewStringAttribute("description", "Company case study embeddings"),
		chromago.NewStringAttribute("created_by", "portfolio-rag"),
		chromago.NewStringAttribute("hnsw:space", "cosine"),
	)
}

func (c *ChromaIndex) getOrCreate(ctx context.Context) (chromago.Collection, error) {
	c.logger.Info("chroma: getting or creating collection", zap.String("collection", c.name))
	collection, err := c.client.GetOrCreateCollection(ctx, c.name,
		chromago.WithCollectionMetadataCreate(collectionMetadata()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: get or create collection %q: %v", ErrIndexUnavailable, c.name, err)
	}
	return collection, nil
}

func (c *ChromaIndex) current() chromago.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection
}

// Name returns the collection name.
func (c *ChromaIndex) Name() string { return c.name }

// Add writes entries in a single request. Chroma never overwrites an existing
// id on Add.
func (c *ChromaIndex) Add(ctx context.Context, entries []models.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]chromago.DocumentID, 0, len(entries))
	texts := make([]string, 0, len(entries))
	embs := make([]embeddings.Embedding, 0, len(entries))
	metas := make([]chromago.DocumentMetadata, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, chromago.DocumentID(e.ID))
		texts = append(texts, e.Chunk.Text)
		embs = append(embs, embeddings.NewEmbeddingFromFloat32(e.Embedding))
		metas = append(metas, chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("url", e.Chunk.URL),
			chromago.NewStringAttribute("title", e.Chunk.Title),
			chromago.NewStringAttribute("description", e.Chunk.Description),
			chromago.NewIntAttribute("chunk_index", int64(e.Chunk.ChunkIndex)),
			chromago.NewIntAttribute("total_chunks", int64(e.Chunk.TotalChunks)),
		))
	}
	err := c.current().Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("%w: add %d entries: %v", ErrIndexUnavailable, len(entries), err)
	}
	return nil
}

// Query returns the k nearest chunks with their cosine distances.
func (c *ChromaIndex) Query(ctx context.Context, vector []float32, k int) ([]QueryMatch, error) {
	results, err := c.current().Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrIndexUnavailable, err)
	}

	documentGroups := results.GetDocumentsGroups()
	if len(documentGroups) == 0 {
		return nil, nil
	}
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	idGroups := results.GetIDGroups()

	matches := make([]QueryMatch, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		m := QueryMatch{Text: doc.ContentString()}
		if len(idGroups) > 0 && i < len(idGroups[0]) {
			m.ID = string(idGroups[0][i])
		}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			m.Distance = float64(distanceGroups[0][i])
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) && metadataGroups[0][i] != nil {
			meta, err := decodeChunkMetadata(metadataGroups[0][i])
			if err != nil {
				c.logger.Warn("chroma: could not decode metadata", zap.String("id", m.ID), zap.Error(err))
			}
			m.Metadata = meta
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// decodeChunkMetadata converts Chroma document metadata into the typed record.
// DocumentMetadata has no typed accessor for the whole set, so it goes through JSON.
func decodeChunkMetadata(meta chromago.DocumentMetadata) (models.ChunkMetadata, error) {
	var out models.ChunkMetadata
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(jsonBytes, &out)
	return out, err
}

// Count returns the number of chunks in the collection.
func (c *ChromaIndex) Count(ctx context.Context) (int, error) {
	count, err := c.current().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrIndexUnavailable, err)
	}
	return int(count), nil
}

// Reset deletes the collection and creates it again.
func (c *ChromaIndex) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.client.DeleteCollection(ctx, c.name); err != nil {
		c.logger.Warn("chroma: delete collection failed, recreating anyway", zap.String("collection", c.name), zap.Error(err))
	} else {
		c.logger.Info("chroma: collection deleted", zap.String("collection", c.name))
	}
	collection, err := c.getOrCreate(ctx)
	if err != nil {
		return err
	}
	c.collection = collection
	return nil
}
