package index

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"docchat/internal/helper"
	"docchat/internal/models"
)

// memoryIndex wraps an in-memory chromem-go collection
type memoryIndex struct {
	collection *chromem.Collection
	chunks     []models.TextChunk // ingestion order, keyed by Sequence
}

// BuildMemory embeds every chunk and constructs an in-memory index over them.
func BuildMemory(ctx context.Context, embedder Embedder, chunks []models.TextChunk) (Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	name, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("doc-"+name, nil, chromem.EmbeddingFunc(embedder.EmbedQuery))
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		embedding, err := embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", ErrEmbedding, chunk.Sequence, err)
		}
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("chunk-%d", chunk.Sequence),
			Content: chunk.Content,
			Metadata: map[string]string{
				"page": strconv.Itoa(chunk.PageNumber),
				"seq":  strconv.Itoa(chunk.Sequence),
			},
			Embedding: embedding,
		}
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	stored := make([]models.TextChunk, len(chunks))
	copy(stored, chunks)
	return &memoryIndex{collection: collection, chunks: stored}, nil
}

func (m *memoryIndex) Search(ctx context.Context, query string, k int) ([]models.TextChunk, error) {
	if k <= 0 {
		k = DefaultK
	}
	// chromem rejects result counts beyond the corpus size
	if n := m.collection.Count(); k > n {
		k = n
	}

	results, err := m.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	type hit struct {
		seq        int
		similarity float32
	}
	hits := make([]hit, 0, len(results))
	for _, res := range results {
		seq, err := strconv.Atoi(res.Metadata["seq"])
		if err != nil || seq < 0 || seq >= len(m.chunks) {
			continue
		}
		hits = append(hits, hit{seq: seq, similarity: res.Similarity})
	}
	// ascending distance, ties broken by ingestion order
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].similarity != hits[j].similarity {
			return hits[i].similarity > hits[j].similarity
		}
		return hits[i].seq < hits[j].seq
	})

	out := make([]models.TextChunk, len(hits))
	for i, h := range hits {
		out[i] = m.chunks[h.seq]
	}
	return out, nil
}
