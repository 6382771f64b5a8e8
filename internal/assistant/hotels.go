package assistant

import "slices"

// Hotel is an entry of the static hotel catalog.
type Hotel struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Rating        float64  `json:"rating"`
	PricePerNight int      `json:"price"`
	Amenities     []string `json:"amenities"`
	Description   string   `json:"description"`
}

var catalog = []Hotel{
	{
		ID:            1,
		Name:          "Oceanview Resort",
		Location:      "Goa, India",
		Rating:        4.6,
		PricePerNight: 120,
		Amenities:     []string{"Free Wi-Fi", "Swimming Pool", "Breakfast Included", "Beach Access"},
		Description:   "A relaxing resort with ocean views in Goa, featuring modern rooms and premium amenities.",
	},
	{
		ID:            2,
		Name:          "Mountain Retreat",
		Location:      "Manali, India",
		Rating:        4.8,
		PricePerNight: 150,
		Amenities:     []string{"Mountain View", "Heated Rooms", "Hiking Trails"},
		Description:   "A peaceful mountain retreat offering serene views and adventure experiences.",
	},
}

// Hotels returns a copy of the hotel catalog.
func Hotels() []Hotel {
	out := make([]Hotel, len(catalog))
	for i, h := range catalog {
		h.Amenities = slices.Clone(h.Amenities)
		out[i] = h
	}
	return out
}
