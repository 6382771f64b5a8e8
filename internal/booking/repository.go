package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/guidepro/guidepro/internal/db"
)

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("booking not found")

// Repository stores confirmed bookings.
type Repository interface {
	// Add inserts rec and sets its ID and CreatedAt.
	Add(ctx context.Context, rec *Record) error
	// List returns every booking, most recent first.
	List(ctx context.Context) ([]Record, error)
	// Delete removes a booking by id.
	Delete(ctx context.Context, id int64) error
}

// SQLiteRepository implements Repository on the bookings table.
type SQLiteRepository struct {
	db *db.DB
}

// NewSQLiteRepository creates a repository over an open database.
func NewSQLiteRepository(database *db.DB) *SQLiteRepository {
	return &SQLiteRepository{db: database}
}

func (r *SQLiteRepository) Add(ctx context.Context, rec *Record) error {
	created := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (name, email, phone, hotel, destination, checkin, checkout, guests, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.Email, rec.Phone, rec.Hotel, rec.Destination,
		rec.CheckIn.Format(DateLayout), rec.CheckOut.Format(DateLayout),
		rec.Guests, rec.Notes, created,
	)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading booking id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = created
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone, hotel, destination, checkin, checkout, guests, notes, created_at
		 FROM bookings ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var checkIn, checkOut string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.Hotel, &rec.Destination,
			&checkIn, &checkOut, &rec.Guests, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		if err := rec.parseDates(checkIn, checkOut); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a single booking.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	var checkIn, checkOut string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, hotel, destination, checkin, checkout, guests, notes, created_at
		 FROM bookings WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.Hotel, &rec.Destination,
		&checkIn, &checkOut, &rec.Guests, &rec.Notes, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting booking: %w", err)
	}
	if err := rec.parseDates(checkIn, checkOut); err != nil {
		return nil, err
	}
	return &rec, nil
}

// parseDates fills the stay dates from their stored YYYY-MM-DD text.
func (rec *Record) parseDates(checkIn, checkOut string) error {
	var err error
	if rec.CheckIn, err = time.Parse(DateLayout, checkIn); err != nil {
		return fmt.Errorf("booking %d checkin: %w", rec.ID, err)
	}
	if rec.CheckOut, err = time.Parse(DateLayout, checkOut); err != nil {
		return fmt.Errorf("booking %d checkout: %w", rec.ID, err)
	}
	return nil
}
