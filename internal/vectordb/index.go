package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// dimensionality fixed by the first append.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Index stores document vectors and answers nearest-neighbor queries.
// Append is all-or-nothing: either every document of the batch becomes
// visible to Search, or none does.
type Index interface {
	// Append adds documents in order, assigning each a sequence number.
	Append(ctx context.Context, docs []Document) error

	// Search ranks every stored document by cosine similarity to query and
	// returns the top k. Ties keep insertion order.
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)

	// Len returns the number of stored documents.
	Len() int

	// Dimensions returns the fixed vector length, 0 while empty.
	Dimensions() int

	// Reset drops every document.
	Reset(ctx context.Context) error
}

// Persister is implemented by indexes that can be saved to and restored
// from a directory.
type Persister interface {
	Persist(ctx context.Context, dir string) error
	Load(ctx context.Context, dir string) error
}

// Cosine returns dot(a,b)/(|a||b|). A zero-norm vector has similarity 0.
func Cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// checkBatch validates a batch against the index dimension and returns the
// dimension the index will have after the append.
func checkBatch(dims int, docs []Document) (int, error) {
	for i, d := range docs {
		if d.Text == "" {
			return dims, fmt.Errorf("document %d: empty text", i)
		}
		if len(d.Vector) == 0 {
			return dims, fmt.Errorf("document %d: empty vector", i)
		}
		if dims == 0 {
			dims = len(d.Vector)
		}
		if len(d.Vector) != dims {
			return dims, fmt.Errorf("document %d has %d dimensions, index has %d: %w",
				i, len(d.Vector), dims, ErrDimensionMismatch)
		}
	}
	return dims, nil
}

// rank orders results by similarity descending, then by sequence, and keeps
// the first k.
func rank(results []SearchResult, k int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Document.Seq < results[j].Document.Seq
	})
	if k < len(results) {
		results = results[:k]
	}
	return results
}
