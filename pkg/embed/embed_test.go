package embed_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/morganstate-cs/morganai/pkg/embed"
)

// fakeServer answers the embeddings endpoint with deterministic vectors and
// counts requests.
func fakeServer(t *testing.T, dim int, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		var req struct {
			Input any `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var texts []string
		switch v := req.Input.(type) {
		case string:
			texts = []string{v}
		case []any:
			for _, item := range v {
				texts = append(texts, fmt.Sprint(item))
			}
		}

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		data := make([]item, len(texts))
		for i := range texts {
			vec := make([]float64, dim)
			for j := range vec {
				vec[j] = float64(i+1) * 0.01 * float64(j+1)
			}
			data[i] = item{Object: "embedding", Index: i, Embedding: vec}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "test-model",
			"data":   data,
		})
	}))
}

func TestEmbed(t *testing.T) {
	const dim = 4
	srv := fakeServer(t, dim, nil)
	defer srv.Close()

	e := embed.NewOpenAI("test-key",
		embed.WithBaseURL(srv.URL),
		embed.WithDimension(dim),
	)

	if e.Dimension() != dim {
		t.Fatalf("Dimension() = %d, want %d", e.Dimension(), dim)
	}
	if e.Model() != embed.ModelAda002 {
		t.Fatalf("Model() = %q, want default %q", e.Model(), embed.ModelAda002)
	}

	vec, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != dim {
		t.Fatalf("len(vec) = %d, want %d", len(vec), dim)
	}
}

func TestEmbedBatch(t *testing.T) {
	const dim = 3
	var calls atomic.Int64
	srv := fakeServer(t, dim, &calls)
	defer srv.Close()

	e := embed.NewOpenAI("test-key",
		embed.WithBaseURL(srv.URL),
		embed.WithDimension(dim),
		embed.WithModel(embed.Model3Small),
	)

	texts := []string{"alpha", "bravo", "charlie"}
	vecs, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("len(vecs) = %d, want %d", len(vecs), len(texts))
	}
	for i, v := range vecs {
		if len(v) != dim {
			t.Errorf("vecs[%d] has %d dims, want %d", i, len(v), dim)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("API calls = %d, want 1 for a small batch", got)
	}
}

func TestEmptyInput(t *testing.T) {
	e := embed.NewOpenAI("test-key")
	if _, err := e.Embed(context.Background(), ""); !errors.Is(err, embed.ErrEmptyInput) {
		t.Errorf("Embed(\"\") = %v, want ErrEmptyInput", err)
	}
	if _, err := e.EmbedBatch(context.Background(), nil); !errors.Is(err, embed.ErrEmptyInput) {
		t.Errorf("EmbedBatch(nil) = %v, want ErrEmptyInput", err)
	}
}
