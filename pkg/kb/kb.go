// Package kb is the retrieval layer behind the assistant. Documents are
// chunked, embedded, and upserted into a vecstore namespace; at question
// time the most similar chunks come back as context passages with their
// source attached.
package kb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/morganstate-cs/morganai/pkg/embed"
	"github.com/morganstate-cs/morganai/pkg/storage"
	"github.com/morganstate-cs/morganai/pkg/vecstore"
)

// Retrieval defaults.
const (
	// DefaultNamespace holds the CS department corpus.
	DefaultNamespace = "morgan-cs-dept"

	// DefaultTopK is the number of passages fetched per question.
	DefaultTopK = 5

	// MinScore is the similarity floor: weaker matches are noise and get
	// dropped rather than stuffed into the prompt.
	MinScore = 0.5
)

// Passage is one retrieved context chunk.
type Passage struct {
	Text   string
	Source string
	Score  float32
}

// Service ties together chunking, embedding, and vector search.
type Service struct {
	embedder  embed.Embedder
	index     vecstore.Index
	docs      storage.DocumentStore
	logger    *slog.Logger
	namespace string
	chunkSize int
	overlap   int
	topK      int
}

// Option configures a Service.
type Option func(*Service)

// WithNamespace overrides the vector namespace.
func WithNamespace(ns string) Option {
	return func(s *Service) { s.namespace = ns }
}

// WithChunking overrides chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(s *Service) { s.chunkSize, s.overlap = size, overlap }
}

// WithTopK overrides the retrieval depth.
func WithTopK(k int) Option {
	return func(s *Service) { s.topK = k }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDocumentStore attaches the raw document archive used by
// IngestDocument and ReindexAll.
func WithDocumentStore(docs storage.DocumentStore) Option {
	return func(s *Service) { s.docs = docs }
}

// New creates a retrieval service over the given embedder and index.
func New(embedder embed.Embedder, index vecstore.Index, opts ...Option) *Service {
	s := &Service{
		embedder:  embedder,
		index:     index,
		logger:    slog.Default(),
		namespace: DefaultNamespace,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestText chunks, embeds, and indexes one document. Returns the number
// of chunks stored. Chunk IDs are "<source>#<n>", so re-ingesting a source
// overwrites its previous chunks in place.
func (s *Service) IngestText(ctx context.Context, source, text string) (int, error) {
	chunks := Chunk(text, s.chunkSize, s.overlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	vecs, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("kb: embed %s: %w", source, err)
	}

	vectors := make([]vecstore.Vector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = vecstore.Vector{
			ID:     fmt.Sprintf("%s#%d", source, i),
			Values: vecs[i],
			Metadata: map[string]string{
				"text":   chunk,
				"source": source,
			},
		}
	}
	if err := s.index.Upsert(ctx, s.namespace, vectors); err != nil {
		return 0, fmt.Errorf("kb: upsert %s: %w", source, err)
	}
	s.logger.Info("document ingested", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// IngestDocument reads one document from the archive and ingests it. Only
// plain-text formats are supported; binary formats must be converted
// before upload.
func (s *Service) IngestDocument(ctx context.Context, path string) (int, error) {
	if s.docs == nil {
		return 0, fmt.Errorf("kb: no document store configured")
	}
	r, err := s.docs.Read(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("kb: open %s: %w", path, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("kb: read %s: %w", path, err)
	}
	return s.IngestText(ctx, path, string(data))
}

// ReindexAll re-ingests every document in the archive.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	if s.docs == nil {
		return 0, fmt.Errorf("kb: no document store configured")
	}
	paths, err := s.docs.List(ctx, "")
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range paths {
		n, err := s.IngestDocument(ctx, path)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Retrieve embeds the question and returns the passages scoring at or
// above MinScore, best first. An empty result means the corpus has
// nothing relevant, not an error.
func (s *Service) Retrieve(ctx context.Context, question string) ([]Passage, error) {
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("kb: embed question: %w", err)
	}
	matches, err := s.index.Query(ctx, s.namespace, vec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("kb: query: %w", err)
	}

	var passages []Passage
	for _, m := range matches {
		if m.Score < MinScore {
			continue
		}
		passages = append(passages, Passage{
			Text:   m.Metadata["text"],
			Source: m.Metadata["source"],
			Score:  m.Score,
		})
	}
	s.logger.Debug("retrieval", "question_len", len(question), "matches", len(matches), "kept", len(passages))
	return passages, nil
}

// BuildContext renders passages into the prompt block handed to the
// model, each tagged with its source.
func BuildContext(passages []Passage) string {
	if len(passages) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
		if p.Source != "" {
			fmt.Fprintf(&b, "\n[Source: %s]", p.Source)
		}
	}
	return b.String()
}

// DeleteDocument removes a document from the archive along with its
// indexed chunks. Chunk IDs are recomputed from the current content, so
// a document ingested under different chunking settings may leave stale
// vectors behind; ReindexAll after changing settings.
func (s *Service) DeleteDocument(ctx context.Context, path string) error {
	if s.docs == nil {
		return fmt.Errorf("kb: no document store configured")
	}
	r, err := s.docs.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("kb: open %s: %w", path, err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("kb: read %s: %w", path, err)
	}

	chunks := Chunk(string(data), s.chunkSize, s.overlap)
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = fmt.Sprintf("%s#%d", path, i)
	}
	if len(ids) > 0 {
		if err := s.index.Delete(ctx, s.namespace, ids); err != nil {
			return fmt.Errorf("kb: delete vectors for %s: %w", path, err)
		}
	}
	if err := s.docs.Delete(ctx, path); err != nil {
		return fmt.Errorf("kb: delete %s: %w", path, err)
	}
	s.logger.Info("document deleted", "source", path, "chunks", len(ids))
	return nil
}

// Stats reports the index contents.
func (s *Service) Stats(ctx context.Context) (vecstore.Stats, error) {
	return s.index.Stats(ctx)
}

// Reset drops the whole namespace.
func (s *Service) Reset(ctx context.Context) error {
	s.logger.Warn("knowledge base reset", "namespace", s.namespace)
	return s.index.DeleteNamespace(ctx, s.namespace)
}
