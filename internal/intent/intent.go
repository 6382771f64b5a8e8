// Package intent decides whether a chat message asks for a booking or for
// information from the uploaded documents.
package intent

import (
	"regexp"
	"strings"
)

// Classifier flags the intents the assistant routes on.
type Classifier interface {
	IsBookingIntent(text string) bool
	IsDocumentQuery(text string) bool
}

var letterRun = regexp.MustCompile(`\p{L}+`)

// KeywordClassifier matches a keyword when any word of the message starts
// with it, so "booking" and "hotels" both match their stems.
type KeywordClassifier struct {
	booking  []string
	document []string
}

// NewKeywordClassifier builds a classifier from the two keyword lists.
// Keywords are lowercased; blank entries are ignored.
func NewKeywordClassifier(bookingKeywords, documentKeywords []string) *KeywordClassifier {
	return &KeywordClassifier{
		booking:  normalize(bookingKeywords),
		document: normalize(documentKeywords),
	}
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// IsBookingIntent reports whether text asks to start a booking.
func (c *KeywordClassifier) IsBookingIntent(text string) bool {
	return matches(text, c.booking)
}

// IsDocumentQuery reports whether text asks about the uploaded documents.
func (c *KeywordClassifier) IsDocumentQuery(text string) bool {
	return matches(text, c.document)
}

func matches(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, tok := range letterRun.FindAllString(strings.ToLower(text), -1) {
		for _, k := range keywords {
			if strings.HasPrefix(tok, k) {
				return true
			}
		}
	}
	return false
}

var _ Classifier = (*KeywordClassifier)(nil)
