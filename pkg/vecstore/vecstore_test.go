package vecstore_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/morganstate-cs/morganai/pkg/kv"
	"github.com/morganstate-cs/morganai/pkg/vecstore"
)

const ns = "cs-dept"

func testIndexes(t *testing.T, run func(t *testing.T, idx vecstore.Index)) {
	t.Run("memory", func(t *testing.T) {
		idx := vecstore.NewMemory()
		t.Cleanup(func() { idx.Close() })
		run(t, idx)
	})
	t.Run("persistent", func(t *testing.T) {
		store := kv.NewMemory()
		idx, err := vecstore.NewPersistent(context.Background(), store)
		if err != nil {
			t.Fatalf("NewPersistent: %v", err)
		}
		t.Cleanup(func() { idx.Close(); store.Close() })
		run(t, idx)
	})
}

func TestQueryOrdering(t *testing.T) {
	testIndexes(t, func(t *testing.T, idx vecstore.Index) {
		ctx := context.Background()
		err := idx.Upsert(ctx, ns, []vecstore.Vector{
			{ID: "east", Values: []float32{1, 0}, Metadata: map[string]string{"text": "east doc"}},
			{ID: "northeast", Values: []float32{1, 1}},
			{ID: "north", Values: []float32{0, 1}},
			{ID: "west", Values: []float32{-1, 0}},
		})
		if err != nil {
			t.Fatalf("Upsert: %v", err)
		}

		matches, err := idx.Query(ctx, ns, []float32{1, 0}, 3)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(matches) != 3 {
			t.Fatalf("matches = %d, want 3", len(matches))
		}
		wantOrder := []string{"east", "northeast", "north"}
		for i, want := range wantOrder {
			if matches[i].ID != want {
				t.Errorf("matches[%d] = %s, want %s", i, matches[i].ID, want)
			}
		}
		if matches[0].Score < 0.999 {
			t.Errorf("exact match score = %v, want ~1", matches[0].Score)
		}
		if matches[0].Metadata["text"] != "east doc" {
			t.Errorf("metadata = %v, want text=east doc", matches[0].Metadata)
		}
	})
}

func TestNamespaceIsolation(t *testing.T) {
	testIndexes(t, func(t *testing.T, idx vecstore.Index) {
		ctx := context.Background()
		idx.Upsert(ctx, "a", []vecstore.Vector{{ID: "v", Values: []float32{1, 0}}})
		idx.Upsert(ctx, "b", []vecstore.Vector{{ID: "w", Values: []float32{1, 0}}})

		matches, err := idx.Query(ctx, "a", []float32{1, 0}, 10)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(matches) != 1 || matches[0].ID != "v" {
			t.Errorf("namespace a matches = %v, want [v]", matches)
		}

		if matches, _ := idx.Query(ctx, "empty", []float32{1, 0}, 10); len(matches) != 0 {
			t.Errorf("empty namespace matches = %v, want none", matches)
		}
	})
}

func TestDeleteAndStats(t *testing.T) {
	testIndexes(t, func(t *testing.T, idx vecstore.Index) {
		ctx := context.Background()
		idx.Upsert(ctx, ns, []vecstore.Vector{
			{ID: "a", Values: []float32{1, 0}},
			{ID: "b", Values: []float32{0, 1}},
		})
		idx.Upsert(ctx, "other", []vecstore.Vector{{ID: "c", Values: []float32{1, 1}}})

		stats, err := idx.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.TotalVectors != 3 || stats.Namespaces[ns] != 2 || stats.Dimension != 2 {
			t.Errorf("stats = %+v, want 3 vectors, 2 in %s, dim 2", stats, ns)
		}

		if err := idx.Delete(ctx, ns, []string{"a", "missing"}); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		matches, _ := idx.Query(ctx, ns, []float32{1, 0}, 10)
		if len(matches) != 1 || matches[0].ID != "b" {
			t.Errorf("after delete = %v, want [b]", matches)
		}

		if err := idx.DeleteNamespace(ctx, "other"); err != nil {
			t.Fatalf("DeleteNamespace: %v", err)
		}
		stats, _ = idx.Stats(ctx)
		if _, ok := stats.Namespaces["other"]; ok {
			t.Error("namespace other still present after DeleteNamespace")
		}
	})
}

func TestDimensionMismatch(t *testing.T) {
	idx := vecstore.NewMemory()
	ctx := context.Background()
	idx.Upsert(ctx, ns, []vecstore.Vector{{ID: "a", Values: []float32{1, 0, 0}}})
	err := idx.Upsert(ctx, ns, []vecstore.Vector{{ID: "b", Values: []float32{1, 0}}})
	if !errors.Is(err, vecstore.ErrDimensionMismatch) {
		t.Errorf("Upsert = %v, want ErrDimensionMismatch", err)
	}
}

func TestPersistentReload(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	idx, err := vecstore.NewPersistent(ctx, store)
	if err != nil {
		t.Fatalf("NewPersistent: %v", err)
	}
	idx.Upsert(ctx, ns, []vecstore.Vector{
		{ID: "a", Values: []float32{1, 0}, Metadata: map[string]string{"source": "handbook.pdf"}},
	})
	idx.Close()

	// A second index over the same store sees the data.
	reloaded, err := vecstore.NewPersistent(ctx, store)
	if err != nil {
		t.Fatalf("NewPersistent (reload): %v", err)
	}
	matches, err := reloaded.Query(ctx, ns, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].Metadata["source"] != "handbook.pdf" {
		t.Errorf("reloaded matches = %v, want metadata to survive", matches)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero norm", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vecstore.CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CosineSimilarity: %v", err)
			}
			if math.Abs(float64(got)-tt.want) > 1e-6 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := vecstore.CosineSimilarity([]float32{1}, []float32{1, 2}); !errors.Is(err, vecstore.ErrDimensionMismatch) {
		t.Errorf("mismatched dims err = %v, want ErrDimensionMismatch", err)
	}
}
