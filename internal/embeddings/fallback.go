package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FallbackEmbedder tries an ordered chain of embedders and returns the first
// successful result. All members must share the same dimensionality so the
// vectors stay comparable whichever member answered.
type FallbackEmbedder struct {
	chain []Embedder
}

// NewFallbackEmbedder builds a chain. The first embedder is the primary.
func NewFallbackEmbedder(chain ...Embedder) (*FallbackEmbedder, error) {
	if len(chain) == 0 {
		return nil, errors.New("fallback chain needs at least one embedder")
	}
	dims := chain[0].Dimensions()
	for _, e := range chain[1:] {
		if e.Dimensions() != dims {
			return nil, fmt.Errorf("embedder %s has %d dimensions, primary %s has %d",
				e.Name(), e.Dimensions(), chain[0].Name(), dims)
		}
	}
	return &FallbackEmbedder{chain: chain}, nil
}

func (f *FallbackEmbedder) Name() string {
	names := make([]string, len(f.chain))
	for i, e := range f.chain {
		names[i] = e.Name()
	}
	return strings.Join(names, ">")
}

func (f *FallbackEmbedder) Dimensions() int { return f.chain[0].Dimensions() }

func (f *FallbackEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for _, e := range f.chain {
		vecs, err := e.Embed(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}
