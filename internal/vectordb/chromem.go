package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

const (
	collectionName = "documents"
	exportFile     = "chromem.gob.gz"
)

// errNoEmbedder is returned by the collection's embedding func. Documents and
// queries always arrive with precomputed vectors, so it is never called.
var errNoEmbedder = errors.New("chromem index only accepts precomputed embeddings")

func noEmbed(context.Context, string) ([]float32, error) { return nil, errNoEmbedder }

// ChromemIndex implements Index on a chromem-go collection and can be
// persisted to a gzipped gob file.
type ChromemIndex struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	dims       int
}

// NewChromemIndex creates a new in-memory ChromemIndex.
func NewChromemIndex() (*ChromemIndex, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ChromemIndex{db: db, collection: col}, nil
}

func (c *ChromemIndex) Append(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dims, err := checkBatch(c.dims, docs)
	if err != nil {
		return err
	}

	start := c.collection.Count()
	chromDocs := make([]chromem.Document, len(docs))
	ids := make([]string, len(docs))
	for i, d := range docs {
		seq := start + i
		ids[i] = "chunk-" + strconv.Itoa(seq)
		chromDocs[i] = chromem.Document{
			ID:        ids[i],
			Content:   d.Text,
			Embedding: append([]float32(nil), d.Vector...),
			Metadata: map[string]string{
				"source": d.Source,
				"seq":    strconv.Itoa(seq),
				"doc_id": d.ID,
			},
		}
	}

	if err := c.collection.AddDocuments(ctx, chromDocs, 1); err != nil {
		// Roll back whatever part of the batch made it in.
		_ = c.collection.Delete(context.Background(), nil, nil, ids...)
		return fmt.Errorf("chromem add: %w", err)
	}
	c.dims = dims
	return nil
}

func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := c.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != c.dims {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(query), c.dims, ErrDimensionMismatch)
	}

	// Fetch every document so the final order is decided by rank, not by
	// chromem's own sort.
	res, err := c.collection.QueryEmbedding(ctx, query, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]SearchResult, len(res))
	for i, r := range res {
		sim := r.Similarity
		// chromem normalizes vectors first, which turns a zero vector into NaN.
		if math.IsNaN(float64(sim)) {
			sim = 0
		}
		seq, _ := strconv.Atoi(r.Metadata["seq"])
		results[i] = SearchResult{
			Document: Document{
				ID:     r.Metadata["doc_id"],
				Text:   r.Content,
				Source: r.Metadata["source"],
				Vector: r.Embedding,
				Seq:    seq,
			},
			Similarity: sim,
		}
	}
	return rank(results, k), nil
}

func (c *ChromemIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection.Count()
}

func (c *ChromemIndex) Dimensions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dims
}

func (c *ChromemIndex) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := c.db.GetOrCreateCollection(collectionName, nil, noEmbed)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	c.collection = col
	c.dims = 0
	return nil
}

// Persist writes the index to <dir>/chromem.gob.gz.
func (c *ChromemIndex) Persist(_ context.Context, dir string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	return c.db.ExportToFile(filepath.Join(dir, exportFile), true, "")
}

// Load replaces the index contents with <dir>/chromem.gob.gz. A missing
// file leaves the index empty.
func (c *ChromemIndex) Load(ctx context.Context, dir string) error {
	path := filepath.Join(dir, exportFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := c.db.GetCollection(collectionName, noEmbed)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	c.collection = col
	c.dims = 0
	if col.Count() > 0 {
		first, err := col.GetByID(ctx, "chunk-0")
		if err != nil {
			return fmt.Errorf("reading first document: %w", err)
		}
		c.dims = len(first.Embedding)
	}
	return nil
}
