package vecstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is a brute-force cosine Index. Search cost is linear in the
// namespace size, which is fine for a departmental knowledge base.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]Vector
	dimension  int
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{namespaces: make(map[string]map[string]Vector)}
}

func (m *Memory) Upsert(_ context.Context, namespace string, vectors []Vector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range vectors {
		if m.dimension == 0 {
			m.dimension = len(v.Values)
		} else if len(v.Values) != m.dimension {
			return fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(v.Values), m.dimension)
		}
		ns := m.namespaces[namespace]
		if ns == nil {
			ns = make(map[string]Vector)
			m.namespaces[namespace] = ns
		}
		ns[v.ID] = cloneVector(v)
	}
	return nil
}

func (m *Memory) Query(_ context.Context, namespace string, query []float32, topK int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns := m.namespaces[namespace]
	if len(ns) == 0 || topK <= 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(ns))
	for id, v := range ns {
		score, err := CosineSimilarity(query, v.Values)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{ID: id, Score: score, Metadata: v.Metadata})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Memory) Delete(_ context.Context, namespace string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns := m.namespaces[namespace]
	for _, id := range ids {
		delete(ns, id)
	}
	return nil
}

func (m *Memory) DeleteNamespace(_ context.Context, namespace string) error {
	m.mu.Lock()
	delete(m.namespaces, namespace)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := Stats{Dimension: m.dimension, Namespaces: make(map[string]int)}
	for name, ns := range m.namespaces {
		stats.Namespaces[name] = len(ns)
		stats.TotalVectors += len(ns)
	}
	return stats, nil
}

func (m *Memory) Close() error { return nil }

func cloneVector(v Vector) Vector {
	cp := Vector{ID: v.ID, Values: make([]float32, len(v.Values))}
	copy(cp.Values, v.Values)
	if v.Metadata != nil {
		cp.Metadata = make(map[string]string, len(v.Metadata))
		for k, val := range v.Metadata {
			cp.Metadata[k] = val
		}
	}
	return cp
}
