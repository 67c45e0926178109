package splitter

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"docchat/internal/models"
	"docchat/internal/parser"
)

// separator priority for the recursive splitter: paragraph breaks first,
// then line breaks, sentence ends, spaces, and finally a hard character cut
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Split turns extracted pages into ordered, page-annotated chunks.
// Chunk size and overlap are character counts; the caller validates ranges.
func Split(pages []parser.Page, chunkSize, chunkOverlap int) ([]models.TextChunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, chunk size)", chunkOverlap)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators(separators),
	)

	var chunks []models.TextChunk
	seq := 0
	for _, page := range pages {
		pieces, err := splitter.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split page %d: %v", page.Number, err)
		}
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, models.TextChunk{
				Content:    piece,
				PageNumber: page.Number,
				Sequence:   seq,
			})
			seq++
		}
	}
	return chunks, nil
}
