package rag

import (
	"context"
	"fmt"

	"github.com/guidepro/guidepro/internal/document"
	"github.com/guidepro/guidepro/internal/embeddings"
	"github.com/guidepro/guidepro/internal/vectordb"
)

// IngestReport summarizes one Ingest call.
type IngestReport struct {
	Documents    int               `json:"documents"`
	Chunks       int               `json:"chunks"`
	FailedChunks int               `json:"failed_chunks"`
	EmptyDocs    []string          `json:"empty_documents,omitempty"`
	FailedDocs   map[string]string `json:"failed_documents,omitempty"`
}

// ProgressFunc is called after each document is processed.
type ProgressFunc func(done, total int, name string)

// Ingest extracts, chunks, embeds and indexes each document. Documents with
// no text are skipped. Chunks whose embedding fails are skipped and the rest
// of the document is still indexed. Each document's chunks are appended as
// one batch, so a chunk is never visible without its vector.
func (s *Store) Ingest(ctx context.Context, docs []document.RawDocument) IngestReport {
	return s.IngestWithProgress(ctx, docs, nil)
}

// IngestWithProgress is Ingest with a per-document progress callback.
func (s *Store) IngestWithProgress(ctx context.Context, docs []document.RawDocument, onProgress ProgressFunc) IngestReport {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	report := IngestReport{FailedDocs: make(map[string]string)}
	for i, doc := range docs {
		if ctx.Err() != nil {
			report.FailedDocs[doc.Name] = ctx.Err().Error()
			continue
		}
		s.ingestOne(ctx, doc, &report)
		if onProgress != nil {
			onProgress(i+1, len(docs), doc.Name)
		}
	}

	if report.Chunks > 0 {
		s.persist(ctx)
	}
	s.logger.Info("ingestion finished",
		"documents", report.Documents,
		"chunks", report.Chunks,
		"failed_chunks", report.FailedChunks,
		"empty_documents", len(report.EmptyDocs),
		"total_chunks", s.opts.Index.Len(),
	)
	return report
}

func (s *Store) ingestOne(ctx context.Context, doc document.RawDocument, report *IngestReport) {
	text := s.opts.Extractor.Extract(doc)
	if text == "" {
		s.logger.Warn("document has no usable text, skipping", "document", doc.Name)
		report.EmptyDocs = append(report.EmptyDocs, doc.Name)
		return
	}

	pieces := s.opts.Chunker.Split(text)
	if len(pieces) == 0 {
		report.EmptyDocs = append(report.EmptyDocs, doc.Name)
		return
	}

	vectors := s.embedAll(ctx, doc.Name, pieces)

	batch := make([]vectordb.Document, 0, len(pieces))
	for i, piece := range pieces {
		if vectors[i] == nil {
			report.FailedChunks++
			continue
		}
		c, err := NewChunk(piece, doc.Name, vectors[i])
		if err != nil {
			report.FailedChunks++
			continue
		}
		batch = append(batch, c.document())
	}
	if len(batch) == 0 {
		report.FailedDocs[doc.Name] = "no chunk could be embedded"
		return
	}

	if err := s.opts.Index.Append(ctx, batch); err != nil {
		s.logger.Error("indexing document failed", "document", doc.Name, "error", err)
		report.FailedDocs[doc.Name] = err.Error()
		report.FailedChunks += len(batch)
		return
	}
	report.Documents++
	report.Chunks += len(batch)
}

// embedAll embeds the chunks of one document in a single batch. If the batch
// fails, each chunk is retried alone; a nil entry marks a chunk that could
// not be embedded.
func (s *Store) embedAll(ctx context.Context, name string, pieces []string) [][]float32 {
	ectx, cancel := s.withTimeout(ctx)
	vecs, err := s.opts.Embedder.Embed(ectx, pieces)
	cancel()
	if err == nil && len(vecs) == len(pieces) {
		return s.checkDims(name, vecs)
	}
	if err == nil {
		err = fmt.Errorf("got %d embeddings for %d chunks", len(vecs), len(pieces))
	}
	s.logger.Warn("batch embedding failed, retrying chunks one by one",
		"document", name, "chunks", len(pieces), "kind", embeddings.KindOf(err), "error", err)

	vecs = make([][]float32, len(pieces))
	for i, piece := range pieces {
		if ctx.Err() != nil {
			break
		}
		ectx, cancel := s.withTimeout(ctx)
		vec, err := embeddings.EmbedOne(ectx, s.opts.Embedder, piece)
		cancel()
		if err != nil {
			s.logger.Warn("skipping chunk", "document", name, "chunk", i, "kind", embeddings.KindOf(err), "error", err)
			continue
		}
		vecs[i] = vec
	}
	return s.checkDims(name, vecs)
}

// checkDims drops vectors whose length disagrees with the index.
func (s *Store) checkDims(name string, vecs [][]float32) [][]float32 {
	want := s.opts.Index.Dimensions()
	if want == 0 {
		want = s.opts.Embedder.Dimensions()
	}
	for i, v := range vecs {
		if v != nil && len(v) != want {
			s.logger.Warn("skipping chunk with wrong dimensionality", "document", name, "chunk", i, "got", len(v), "want", want)
			vecs[i] = nil
		}
	}
	return vecs
}
