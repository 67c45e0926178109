package splitter

import (
	"strings"
	"testing"

	"docchat/internal/parser"
)

func repeatSentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog near the river bank. ")
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func TestSplitThreePages(t *testing.T) {
	pages := []parser.Page{
		{Number: 1, Text: repeatSentences(30)},
		{Number: 2, Text: repeatSentences(30)},
		{Number: 3, Text: repeatSentences(30)},
	}
	chunks, err := Split(pages, 1000, 200)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for 3 pages, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Content == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if len(c.Content) > 1000 {
			t.Errorf("chunk %d exceeds chunk size: %d chars", i, len(c.Content))
		}
		if c.Sequence != i {
			t.Errorf("chunk %d has sequence %d, ordering not preserved", i, c.Sequence)
		}
	}
}

func TestSplitPreservesPageNumbers(t *testing.T) {
	pages := []parser.Page{
		{Number: 1, Text: repeatSentences(20)},
		{Number: 2, Text: repeatSentences(20)},
	}
	chunks, err := Split(pages, 500, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	sawPage2 := false
	lastPage := 0
	for _, c := range chunks {
		if c.PageNumber < lastPage {
			t.Errorf("page numbers out of order: %d after %d", c.PageNumber, lastPage)
		}
		lastPage = c.PageNumber
		if c.PageNumber == 2 {
			sawPage2 = true
		}
	}
	if !sawPage2 {
		t.Error("no chunk traced back to page 2")
	}
}

func TestSplitHardCutsLongToken(t *testing.T) {
	// a single unbroken run longer than the chunk size must be cut at
	// character boundaries instead of producing an oversized chunk
	long := strings.Repeat("x", 1800)
	chunks, err := Split([]parser.Page{{Number: 1, Text: long}}, 600, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected the token run to be cut into several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Content) > 600 {
			t.Errorf("chunk %d exceeds chunk size: %d chars", i, len(c.Content))
		}
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunks, err := Split([]parser.Page{{Number: 1, Text: "just a short page"}}, 500, 100)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "just a short page" {
		t.Errorf("unexpected chunk content: %q", chunks[0].Content)
	}
}

func TestSplitSkipsBlankPages(t *testing.T) {
	pages := []parser.Page{
		{Number: 1, Text: "   \n\n  "},
		{Number: 2, Text: "content"},
	}
	chunks, err := Split(pages, 500, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			t.Error("blank chunk produced from empty page")
		}
	}
}

func TestSplitRejectsBadParameters(t *testing.T) {
	pages := []parser.Page{{Number: 1, Text: "text"}}
	if _, err := Split(pages, 0, 0); err == nil {
		t.Error("expected error for zero chunk size")
	}
	if _, err := Split(pages, 500, 500); err == nil {
		t.Error("expected error for overlap equal to chunk size")
	}
	if _, err := Split(pages, 500, -1); err == nil {
		t.Error("expected error for negative overlap")
	}
}
