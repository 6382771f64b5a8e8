package cmd

import "testing"

func TestParseBookingID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"GP-7", 7, false},
		{"gp-3", 3, false},
		{" 5 ", 5, false},
		{"GP-", 0, true},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBookingID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBookingID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseBookingID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
