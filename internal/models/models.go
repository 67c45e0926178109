package models

import (
	"fmt"
	"image"
)

// TextChunk is a bounded slice of document text used as the unit of retrieval
type TextChunk struct {
	Content    string
	PageNumber int // 1-based source page, 0 when the format has no pages
	Sequence   int // position in ingestion order, unique per processed document
}

// ExtractedImage is an embedded raster image keyed by its position in the document
type ExtractedImage struct {
	PageNumber  int // 1-based
	IndexOnPage int // 1-based
	Pixels      image.Image
}

// Address returns the user-facing selector for this image
func (e ExtractedImage) Address() string {
	return fmt.Sprintf("Page %d, Image %d", e.PageNumber, e.IndexOnPage)
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is a single entry in the conversation transcript
type ChatTurn struct {
	Role    string
	Content string
}
