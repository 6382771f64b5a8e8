package assistant

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/guidepro/guidepro/internal/llm"
)

// TripTypes are the itinerary styles PlanTrip accepts.
var TripTypes = []string{"Beach", "City", "Mountain", "International"}

const (
	MinTripGuests = 1
	MaxTripGuests = 20
)

// TripRequest describes an itinerary to generate.
type TripRequest struct {
	Type        string `json:"type"`
	Guests      int    `json:"guests"`
	Destination string `json:"destination"`
}

// Validate normalizes the trip type and checks the request.
func (r *TripRequest) Validate() error {
	r.Destination = strings.TrimSpace(r.Destination)
	if r.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	idx := slices.IndexFunc(TripTypes, func(t string) bool { return strings.EqualFold(t, strings.TrimSpace(r.Type)) })
	if idx < 0 {
		return fmt.Errorf("trip type must be one of %s", strings.Join(TripTypes, ", "))
	}
	r.Type = TripTypes[idx]
	if r.Guests < MinTripGuests || r.Guests > MaxTripGuests {
		return fmt.Errorf("guests must be between %d and %d", MinTripGuests, MaxTripGuests)
	}
	return nil
}

// Prompt is the completion request for the itinerary.
func (r TripRequest) Prompt() string {
	return fmt.Sprintf("Create a detailed 3-day %s trip itinerary for %d guests to %s.", r.Type, r.Guests, r.Destination)
}

// PlanTrip generates an itinerary. Invalid requests are errors; provider
// failures come back as the fixed failure message.
func (a *Assistant) PlanTrip(ctx context.Context, req TripRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}
	return llm.GenerateAnswer(ctx, a.opts.Provider, []llm.Message{
		{Role: llm.RoleUser, Content: req.Prompt()},
	}), nil
}
