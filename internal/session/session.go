package session

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"docchat/internal/config"
	"docchat/internal/images"
	"docchat/internal/index"
	"docchat/internal/models"
	"docchat/internal/parser"
	"docchat/internal/splitter"
)

// Session holds everything belonging to the active document: its semantic
// index, extracted images, path, and the running transcript. One instance
// per user session; it is never shared across sessions and the caller
// serializes operations, so no locking is needed here.
type Session struct {
	DocumentPath string
	Index        index.Index
	Images       []models.ExtractedImage
	Transcript   []models.ChatTurn
}

func New() *Session {
	return &Session{}
}

// Processed reports whether a document has been ingested
func (s *Session) Processed() bool {
	return s.Index != nil
}

// AppendTurn adds one entry to the transcript
func (s *Session) AppendTurn(role, content string) {
	s.Transcript = append(s.Transcript, models.ChatTurn{Role: role, Content: content})
}

// Builder assembles processed documents into a Session
type Builder struct {
	Embedder     index.Embedder
	ChunkSize    int
	ChunkOverlap int
	Backend      string  // "memory" or "postgres"
	PG           *bun.DB // required for the postgres backend
	VectorSize   int
}

// NewBuilder wires a Builder from config
func NewBuilder(embedder index.Embedder, cfg *config.Config, pg *bun.DB) *Builder {
	return &Builder{
		Embedder:     embedder,
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
		Backend:      cfg.Index.Backend,
		PG:           pg,
		VectorSize:   cfg.Index.VectorSize,
	}
}

// ProcessDocument extracts, chunks, indexes, and pulls images out of the
// document at path, then installs all four session fields at once. On any
// failure the session keeps its previous document untouched; no partially
// replaced state is ever observable to chat operations.
func (b *Builder) ProcessDocument(ctx context.Context, s *Session, path string) error {
	pages, err := parser.ExtractPages(path)
	if err != nil {
		return err
	}

	chunks, err := splitter.Split(pages, b.ChunkSize, b.ChunkOverlap)
	if err != nil {
		return err
	}

	var idx index.Index
	switch b.Backend {
	case "postgres":
		idx, err = index.BuildPostgres(ctx, b.PG, b.Embedder, chunks, b.VectorSize)
	default:
		idx, err = index.BuildMemory(ctx, b.Embedder, chunks)
	}
	if err != nil {
		return err
	}

	imgs, err := images.Extract(path)
	if err != nil {
		return err
	}

	log.Info().
		Str("document", path).
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Int("images", len(imgs)).
		Msg("Processed document")

	// atomic from the caller's point of view: nothing above touched s
	s.DocumentPath = path
	s.Index = idx
	s.Images = imgs
	s.Transcript = nil
	return nil
}
