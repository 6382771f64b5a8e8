package intent

import "testing"

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier(
		[]string{"book", "reserve", "hotel", " Room "},
		[]string{"pdf", "policy", "hotel"},
	)

	tests := []struct {
		text     string
		booking  bool
		document bool
	}{
		{"I want to book a hotel", true, true},
		{"Booking please!", true, false},
		{"Can I RESERVE two rooms?", true, false},
		{"What does the cancellation policy say?", false, true},
		{"summarise the PDF", false, true},
		{"tell me about Paris", false, false},
		{"notebook", false, false},
		{"rebook my stay", false, false},
		{"facebook page of the hotel", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := c.IsBookingIntent(tt.text); got != tt.booking {
				t.Errorf("IsBookingIntent = %v, want %v", got, tt.booking)
			}
			if got := c.IsDocumentQuery(tt.text); got != tt.document {
				t.Errorf("IsDocumentQuery = %v, want %v", got, tt.document)
			}
		})
	}
}

func TestKeywordClassifierEmptyLists(t *testing.T) {
	c := NewKeywordClassifier(nil, []string{"", "  "})
	if c.IsBookingIntent("book a hotel") || c.IsDocumentQuery("pdf") {
		t.Error("empty keyword lists should never match")
	}
}
