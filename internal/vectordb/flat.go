package vectordb

import (
	"context"
	"fmt"
	"sync"
)

// FlatIndex is an exact in-memory index that scores every document on each
// query. Appends take the write lock, searches share the read lock.
type FlatIndex struct {
	mu   sync.RWMutex
	docs []Document
	dims int
}

// NewFlatIndex creates an empty FlatIndex.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

func (f *FlatIndex) Append(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dims, err := checkBatch(f.dims, docs)
	if err != nil {
		return err
	}

	start := len(f.docs)
	added := make([]Document, len(docs))
	for i, d := range docs {
		d.Seq = start + i
		if d.ID == "" {
			d.ID = fmt.Sprintf("chunk-%d", d.Seq)
		}
		d.Vector = append([]float32(nil), d.Vector...)
		added[i] = d
	}
	f.docs = append(f.docs, added...)
	f.dims = dims
	return nil
}

func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.docs) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.dims {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(query), f.dims, ErrDimensionMismatch)
	}

	results := make([]SearchResult, len(f.docs))
	for i, d := range f.docs {
		results[i] = SearchResult{Document: d, Similarity: Cosine(query, d.Vector)}
	}
	return rank(results, k), nil
}

func (f *FlatIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.docs)
}

func (f *FlatIndex) Dimensions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dims
}

func (f *FlatIndex) Reset(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = nil
	f.dims = 0
	return nil
}
