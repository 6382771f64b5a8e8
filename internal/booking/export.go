package booking

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVHeader is the column order of exported bookings.
var CSVHeader = []string{"id", "name", "email", "phone", "hotel", "destination", "checkin", "checkout", "guests", "notes", "created_at"}

// ExportCSV writes a header row and one row per record.
func ExportCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			r.Email,
			r.Phone,
			r.Hotel,
			r.Destination,
			r.CheckIn.Format(DateLayout),
			r.CheckOut.Format(DateLayout),
			strconv.Itoa(r.Guests),
			r.Notes,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing booking %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSVFile writes records to path and returns the path written.
func ExportCSVFile(path string, records []Record) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := ExportCSV(f, records); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}
