package rag

import (
	"errors"

	"github.com/guidepro/guidepro/internal/vectordb"
)

// Chunk is one embedded segment of an ingested document.
type Chunk struct {
	Text   string
	Source string
	Vector []float32
}

// NewChunk builds a Chunk, rejecting empty text, source or vector.
func NewChunk(text, source string, vector []float32) (Chunk, error) {
	switch {
	case text == "":
		return Chunk{}, errors.New("chunk text is empty")
	case source == "":
		return Chunk{}, errors.New("chunk source is empty")
	case len(vector) == 0:
		return Chunk{}, errors.New("chunk vector is empty")
	}
	return Chunk{
		Text:   text,
		Source: source,
		Vector: append([]float32(nil), vector...),
	}, nil
}

func (c Chunk) document() vectordb.Document {
	return vectordb.Document{Text: c.Text, Source: c.Source, Vector: c.Vector}
}
