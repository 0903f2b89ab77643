// Package vecstore provides namespaced vector similarity search over the
// knowledge base embeddings.
//
// The [Index] interface follows the same pattern as [kv]: a generic
// contract with pluggable backends. NewMemory is a brute-force cosine
// index; NewPersistent layers write-through persistence on a kv.Store so
// ingested documents survive restarts. For large corpora, swap in a client
// that talks to a hosted vector database.
package vecstore

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when a vector's dimension does not
// match the rest of its namespace.
var ErrDimensionMismatch = errors.New("vecstore: dimension mismatch")

// Vector is one embedded item.
type Vector struct {
	// ID uniquely identifies the vector within its namespace.
	ID string `msgpack:"id"`

	// Values is the dense embedding.
	Values []float32 `msgpack:"values"`

	// Metadata carries the source text and provenance.
	Metadata map[string]string `msgpack:"metadata,omitempty"`
}

// Match is a single similarity search result.
type Match struct {
	ID string

	// Score is cosine similarity: 1 is identical direction, 0 orthogonal,
	// -1 opposite.
	Score float32

	Metadata map[string]string
}

// Stats summarizes index contents.
type Stats struct {
	// Dimension is the embedding width, 0 while the index is empty.
	Dimension int

	// Namespaces maps namespace name to vector count.
	Namespaces map[string]int

	// TotalVectors is the count across all namespaces.
	TotalVectors int
}

// Index is a namespaced vector store. Implementations are safe for
// concurrent use.
type Index interface {
	// Upsert adds or replaces vectors in a namespace.
	Upsert(ctx context.Context, namespace string, vectors []Vector) error

	// Query returns the topK most similar vectors in the namespace,
	// ordered by descending score. An empty namespace yields no matches.
	Query(ctx context.Context, namespace string, query []float32, topK int) ([]Match, error)

	// Delete removes vectors by ID. Absent IDs are ignored.
	Delete(ctx context.Context, namespace string, ids []string) error

	// DeleteNamespace removes a whole namespace.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Stats reports per-namespace vector counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases resources held by the index.
	Close() error
}

// CosineSimilarity computes the cosine of the angle between a and b.
// Returns an error on dimension mismatch; zero-norm vectors score 0.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return float32(sim), nil
}
