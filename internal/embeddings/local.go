package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// LocalEmbedder is an offline embedder using the hashing trick over a
// bag of lowercase word tokens. It needs no network and no vocabulary, and
// the same text always maps to the same unit vector. Text without tokens
// maps to the zero vector.
type LocalEmbedder struct {
	dims         int
	tokenPattern *regexp.Regexp
}

// NewLocalEmbedder creates a hashing embedder with the given dimensionality.
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = 384
	}
	return &LocalEmbedder{
		dims:         dims,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+`),
	}
}

func (e *LocalEmbedder) Name() string    { return "local/hashing-bow" }
func (e *LocalEmbedder) Dimensions() int { return e.dims }

func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, normalize(e.Name(), 0, err)
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *LocalEmbedder) vector(text string) []float32 {
	vec := make([]float32, e.dims)
	for _, tok := range e.tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dims))
		// The top bit picks the sign so collisions tend to cancel out.
		if sum>>63 == 1 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
