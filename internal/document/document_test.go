package document

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " ")
}

func TestNewChunkerRejects(t *testing.T) {
	tests := []struct {
		size, overlap int
	}{
		{0, 0},
		{-1, 0},
		{10, 10},
		{10, -1},
	}
	for _, tt := range tests {
		if _, err := NewChunker(tt.size, tt.overlap); err == nil {
			t.Errorf("NewChunker(%d, %d) should fail", tt.size, tt.overlap)
		}
	}
}

func TestChunkerSplit(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		overlap   int
		text      string
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{"empty", 300, 0, "   \n\t ", 0, "", ""},
		{"shorter than window", 300, 0, "Check-in is  at\n2 PM", 1, "Check-in is at 2 PM", "Check-in is at 2 PM"},
		{"exact multiple", 3, 0, words(6), 2, "w0 w1 w2", "w3 w4 w5"},
		{"remainder", 3, 0, words(7), 3, "w0 w1 w2", "w6"},
		{"overlap", 4, 2, words(8), 3, "w0 w1 w2 w3", "w4 w5 w6 w7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("NewChunker: %v", err)
			}
			got := c.Split(tt.text)
			if len(got) != tt.wantCount {
				t.Fatalf("got %d chunks %q, want %d", len(got), got, tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if got[0] != tt.wantFirst {
				t.Errorf("first = %q, want %q", got[0], tt.wantFirst)
			}
			if got[len(got)-1] != tt.wantLast {
				t.Errorf("last = %q, want %q", got[len(got)-1], tt.wantLast)
			}
		})
	}
}

func TestChunkerCoversEveryWord(t *testing.T) {
	c, _ := NewChunker(300, 0)
	chunks := c.Split(words(650))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	total := 0
	for _, ch := range chunks {
		total += len(strings.Fields(ch))
	}
	if total != 650 {
		t.Errorf("expected 650 words across chunks, got %d", total)
	}
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor()
	got := e.Extract(RawDocument{Name: "faq.txt", Data: []byte("  Pets are welcome.\n")})
	if got != "Pets are welcome." {
		t.Errorf("got %q", got)
	}
}

func TestExtractBinaryIsEmpty(t *testing.T) {
	e := NewExtractor()
	if got := e.Extract(RawDocument{Name: "blob.bin", Data: []byte{0xff, 0xfe, 0x00}}); got != "" {
		t.Errorf("expected empty text for invalid UTF-8, got %q", got)
	}
}

func TestExtractMarkdown(t *testing.T) {
	src := "# Hotel Rules\n\nCheck-in from **2 PM**.\nCheck-out by 11 AM.\n\n- No smoking\n- Quiet after 10 PM\n"
	got := NewExtractor().Extract(RawDocument{Name: "rules.md", Data: []byte(src)})

	for _, want := range []string{"Hotel Rules", "Check-in from 2 PM.", "No smoking", "Quiet after 10 PM"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "**") || strings.Contains(got, "#") {
		t.Errorf("markdown syntax leaked into %q", got)
	}
}

func TestExtractMalformedPDF(t *testing.T) {
	got := NewExtractor().Extract(RawDocument{Name: "policy.PDF", Data: []byte("not a pdf")})
	if got != "" {
		t.Errorf("expected empty text for malformed PDF, got %q", got)
	}
}
