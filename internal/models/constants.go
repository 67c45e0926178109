package models

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultRetrievalK   = 4

	MinChunkSize    = 500
	MaxChunkSize    = 2000
	MaxChunkOverlap = 500
)

var (
	TextPromptTemplate = `Use the following context from a document and the conversation history to answer the question.
If the answer is not in the context, say you don't know.

Context:
%s

History:
%s

Question: %s
`
)
