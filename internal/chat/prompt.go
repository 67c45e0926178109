package chat

import (
	"fmt"
	"sort"
	"strings"

	"docchat/internal/models"
)

// BuildPrompt assembles the text-mode prompt: retrieved context joined in
// original-chunk order, the history as "role: content" lines, and the
// question itself.
func BuildPrompt(chunks []models.TextChunk, transcript []models.ChatTurn, query string) string {
	ordered := make([]models.TextChunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	var context strings.Builder
	for i, chunk := range ordered {
		if i > 0 {
			context.WriteString("\n")
		}
		context.WriteString(chunk.Content)
	}

	var history strings.Builder
	for i, turn := range transcript {
		if i > 0 {
			history.WriteString("\n")
		}
		history.WriteString(turn.Role)
		history.WriteString(": ")
		history.WriteString(turn.Content)
	}

	return fmt.Sprintf(models.TextPromptTemplate, context.String(), history.String(), query)
}
