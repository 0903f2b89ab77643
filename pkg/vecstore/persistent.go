package vecstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/morganstate-cs/morganai/pkg/kv"
)

const keyPrefix = "vec/"

// Persistent wraps Memory with write-through persistence on a kv.Store.
// All reads hit the in-memory index; every mutation lands in the store
// before it is visible. Vectors are msgpack-encoded under
// "vec/<namespace>/<id>".
type Persistent struct {
	mem   *Memory
	store kv.Store
}

// NewPersistent loads all persisted vectors from store into memory and
// returns the combined index. The caller keeps ownership of store; Close
// does not close it.
func NewPersistent(ctx context.Context, store kv.Store) (*Persistent, error) {
	p := &Persistent{mem: NewMemory(), store: store}
	for entry, err := range store.Scan(ctx, keyPrefix) {
		if err != nil {
			return nil, fmt.Errorf("vecstore: load: %w", err)
		}
		namespace, ok := namespaceOf(entry.Key)
		if !ok {
			continue
		}
		var v Vector
		if err := msgpack.Unmarshal(entry.Value, &v); err != nil {
			return nil, fmt.Errorf("vecstore: decode %s: %w", entry.Key, err)
		}
		if err := p.mem.Upsert(ctx, namespace, []Vector{v}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Persistent) Upsert(ctx context.Context, namespace string, vectors []Vector) error {
	for _, v := range vectors {
		data, err := msgpack.Marshal(v)
		if err != nil {
			return fmt.Errorf("vecstore: encode %s: %w", v.ID, err)
		}
		if err := p.store.Put(ctx, vectorKey(namespace, v.ID), data); err != nil {
			return err
		}
	}
	return p.mem.Upsert(ctx, namespace, vectors)
}

func (p *Persistent) Query(ctx context.Context, namespace string, query []float32, topK int) ([]Match, error) {
	return p.mem.Query(ctx, namespace, query, topK)
}

func (p *Persistent) Delete(ctx context.Context, namespace string, ids []string) error {
	for _, id := range ids {
		if err := p.store.Delete(ctx, vectorKey(namespace, id)); err != nil {
			return err
		}
	}
	return p.mem.Delete(ctx, namespace, ids)
}

func (p *Persistent) DeleteNamespace(ctx context.Context, namespace string) error {
	if err := p.store.DeletePrefix(ctx, keyPrefix+namespace+"/"); err != nil {
		return err
	}
	return p.mem.DeleteNamespace(ctx, namespace)
}

func (p *Persistent) Stats(ctx context.Context) (Stats, error) {
	return p.mem.Stats(ctx)
}

func (p *Persistent) Close() error {
	return p.mem.Close()
}

func vectorKey(namespace, id string) string {
	return keyPrefix + namespace + "/" + id
}

// namespaceOf extracts the namespace from a "vec/<namespace>/<id>" key.
func namespaceOf(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return "", false
	}
	namespace, _, ok := strings.Cut(rest, "/")
	return namespace, ok
}
