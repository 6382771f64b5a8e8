package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Record is a confirmed reservation in the shape the bookings table stores.
// The max tags match the Max*Len slot limits.
type Record struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Email       string    `json:"email" validate:"required,basic_email,max=320"`
	Phone       string    `json:"phone" validate:"max=50"`
	Hotel       string    `json:"hotel" validate:"required,max=200"`
	Destination string    `json:"destination" validate:"required,max=200"`
	CheckIn     time.Time `json:"checkin"`
	CheckOut    time.Time `json:"checkout"`
	Guests      int       `json:"guests" validate:"gt=0"`
	Notes       string    `json:"notes" validate:"max=2000"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reference is the booking reference quoted to the guest.
func (r Record) Reference() string {
	return fmt.Sprintf("GP-%d", r.ID)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		if err := v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("registering basic_email validation: %v", err))
		}
		validate = v
	})
	return validate
}

// NewRecord builds a Record from collected slot values. Optional fields get
// their defaults: phone and notes become empty, hotel falls back to the
// destination.
func NewRecord(values map[string]string) (Record, error) {
	rec := Record{
		Name:        strings.TrimSpace(values[SlotName]),
		Email:       strings.TrimSpace(values[SlotEmail]),
		Phone:       strings.TrimSpace(values[SlotPhone]),
		Hotel:       strings.TrimSpace(values["hotel"]),
		Destination: strings.TrimSpace(values[SlotDestination]),
		Notes:       strings.TrimSpace(values["notes"]),
	}
	if rec.Hotel == "" {
		rec.Hotel = rec.Destination
	}

	var err error
	if rec.CheckIn, err = time.Parse(DateLayout, values[SlotCheckIn]); err != nil {
		return Record{}, fmt.Errorf("checkin: %w", err)
	}
	if rec.CheckOut, err = time.Parse(DateLayout, values[SlotCheckOut]); err != nil {
		return Record{}, fmt.Errorf("checkout: %w", err)
	}
	if rec.Guests, err = strconv.Atoi(values[SlotGuests]); err != nil {
		return Record{}, fmt.Errorf("guests: %w", err)
	}

	if err := recordValidator().Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag())
			}
			return Record{}, fmt.Errorf("invalid booking: %s", strings.Join(fields, ", "))
		}
		return Record{}, err
	}
	return rec, nil
}
