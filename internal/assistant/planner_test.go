package assistant

import (
	"context"
	"testing"

	"github.com/guidepro/guidepro/internal/llm"
)

func TestTripRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     TripRequest
		wantErr bool
	}{
		{"valid", TripRequest{Type: "Beach", Guests: 2, Destination: "Goa"}, false},
		{"case insensitive type", TripRequest{Type: "mountain", Guests: 20, Destination: "Manali"}, false},
		{"unknown type", TripRequest{Type: "Desert", Guests: 2, Destination: "Dubai"}, true},
		{"no guests", TripRequest{Type: "City", Guests: 0, Destination: "Paris"}, true},
		{"too many guests", TripRequest{Type: "City", Guests: 21, Destination: "Paris"}, true},
		{"blank destination", TripRequest{Type: "City", Guests: 2, Destination: "  "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlanTrip(t *testing.T) {
	f := newFixture(t)
	got, err := f.a.PlanTrip(context.Background(), TripRequest{Type: "beach", Guests: 4, Destination: " Goa "})
	if err != nil {
		t.Fatalf("PlanTrip: %v", err)
	}
	if got != "generated answer" {
		t.Errorf("itinerary = %q", got)
	}
	want := "Create a detailed 3-day Beach trip itinerary for 4 guests to Goa."
	if msgs := f.provider.requests[0].Messages; len(msgs) != 1 || msgs[0].Content != want || msgs[0].Role != llm.RoleUser {
		t.Errorf("prompt = %+v", msgs)
	}

	if _, err := f.a.PlanTrip(context.Background(), TripRequest{Type: "Beach"}); err == nil {
		t.Error("expected validation error")
	}
}

func TestHotelsReturnsCopy(t *testing.T) {
	hotels := Hotels()
	if len(hotels) != 2 || hotels[0].Name != "Oceanview Resort" || hotels[1].PricePerNight != 150 {
		t.Fatalf("catalog = %+v", hotels)
	}
	hotels[0].Amenities[0] = "changed"
	if Hotels()[0].Amenities[0] != "Free Wi-Fi" {
		t.Error("Hotels exposed the catalog's backing array")
	}
}
