package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docchat/internal/config"
	"docchat/internal/models"
)

// chunkRow is the persisted form of a chunk in the pgvector-backed index
type chunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Content       string    `bun:"content,notnull"`
	PageNumber    int       `bun:"page_number"`
	Seq           int       `bun:"seq,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
}

// ConnectPostgres opens a bun connection for the postgres index backend
func ConnectPostgres(cfg *config.IndexConfig) (*bun.DB, error) {
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// postgresIndex keeps the chunk list in memory and the vectors in Postgres
type postgresIndex struct {
	db       *bun.DB
	embedder Embedder
	chunks   []models.TextChunk
}

// BuildPostgres embeds every chunk and rebuilds the chunks table from scratch.
// The previous table contents are dropped; incremental update is not supported.
func BuildPostgres(ctx context.Context, db *bun.DB, embedder Embedder, chunks []models.TextChunk, vectorSize int) (Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	rows := make([]chunkRow, len(chunks))
	for i, chunk := range chunks {
		embedding, err := embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", ErrEmbedding, chunk.Sequence, err)
		}
		if vectorSize > 0 && len(embedding) != vectorSize {
			return nil, fmt.Errorf("%w: embedding dimension %d does not match configured vector size %d", ErrEmbedding, len(embedding), vectorSize)
		}
		rows[i] = chunkRow{
			Content:    chunk.Content,
			PageNumber: chunk.PageNumber,
			Seq:        chunk.Sequence,
			Embedding:  embedding,
		}
	}

	if _, err := db.NewDropTable().Model((*chunkRow)(nil)).IfExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear chunks table: %v", err)
	}
	if _, err := db.NewCreateTable().Model((*chunkRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create chunks table: %v", err)
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %v", err)
	}

	stored := make([]models.TextChunk, len(chunks))
	copy(stored, chunks)
	return &postgresIndex{db: db, embedder: embedder, chunks: stored}, nil
}

func (p *postgresIndex) Search(ctx context.Context, query string, k int) ([]models.TextChunk, error) {
	if k <= 0 {
		k = DefaultK
	}
	if k > len(p.chunks) {
		k = len(p.chunks)
	}

	queryEmbedding, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	var rows []chunkRow
	err = p.db.NewSelect().
		Model(&rows).
		Column("content", "page_number", "seq").
		OrderExpr("embedding <-> ?, seq ASC", queryEmbedding).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %v", err)
	}

	out := make([]models.TextChunk, 0, len(rows))
	for _, row := range rows {
		if row.Seq >= 0 && row.Seq < len(p.chunks) {
			out = append(out, p.chunks[row.Seq])
		}
	}
	return out, nil
}
