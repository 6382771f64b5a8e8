package llm

import (
	"context"
	"strings"
)

// FallbackProvider tries an ordered list of providers and returns the first
// successful completion. When every provider fails, the last error is returned.
type FallbackProvider struct {
	chain []Provider
}

// NewFallbackProvider builds a fallback chain. The first provider is the primary.
func NewFallbackProvider(chain ...Provider) *FallbackProvider {
	return &FallbackProvider{chain: chain}
}

func (f *FallbackProvider) Name() string {
	names := make([]string, len(f.chain))
	for i, p := range f.chain {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

func (f *FallbackProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	for _, p := range f.chain {
		// Model names are provider specific; let each member use its own.
		r := req
		r.Model = ""
		resp, err := p.Complete(ctx, r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}
