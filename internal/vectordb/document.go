package vectordb

// Document is one indexed text chunk with its embedding.
type Document struct {
	ID     string
	Text   string
	Source string
	Vector []float32
	// Seq is the insertion order within the index, assigned on append.
	Seq int
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}
