// Package document turns uploaded files into plain text and splits that text
// into word-window chunks for embedding.
package document

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// RawDocument is an uploaded file before extraction.
type RawDocument struct {
	Name string
	Data []byte
}

// Extractor pulls plain text out of a RawDocument. An empty string means the
// document had no usable text.
type Extractor interface {
	Extract(doc RawDocument) string
}

// FormatExtractor picks a strategy from the file extension: PDF, Markdown, or
// plain UTF-8 text.
type FormatExtractor struct {
	md goldmark.Markdown
}

// NewExtractor returns the default FormatExtractor.
func NewExtractor() *FormatExtractor {
	return &FormatExtractor{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (e *FormatExtractor) Extract(doc RawDocument) string {
	var (
		out string
		err error
	)
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		out, err = extractPDF(doc.Data)
	case ".md", ".markdown":
		out = e.extractMarkdown(doc.Data)
	default:
		out, err = extractPlain(doc.Data)
	}
	if err != nil {
		slog.Warn("text extraction failed", "document", doc.Name, "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

func extractPDF(data []byte) (out string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return string(b), nil
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid UTF-8 text")
	}
	return string(data), nil
}

// extractMarkdown walks the goldmark AST and keeps only the text content,
// one line per block.
func (e *FormatExtractor) extractMarkdown(src []byte) string {
	root := e.md.Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	// Collapse runs of blank lines left by nested blocks.
	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
