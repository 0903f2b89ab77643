// Package embed converts text into dense vectors for the knowledge base.
//
// An Embedder turns chunked documents and user questions into embeddings
// that vecstore can search. The only production implementation talks to
// the OpenAI embeddings API; an OpenAI-compatible provider can be used by
// overriding the base URL.
package embed

import (
	"context"
	"errors"
)

// Embedder converts text into dense float32 vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple texts. Large
	// batches are split into multiple API calls transparently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// ErrEmptyInput is returned when the input text is empty.
var ErrEmptyInput = errors.New("embed: empty input")
