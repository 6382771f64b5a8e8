package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the only accepted date format for check-in and check-out.
const DateLayout = "2006-01-02"

// Slot keys, in the order they are asked.
const (
	SlotName        = "name"
	SlotEmail       = "email"
	SlotPhone       = "phone"
	SlotDestination = "destination"
	SlotCheckIn     = "checkin"
	SlotCheckOut    = "checkout"
	SlotGuests      = "guests"
)

// Length limits of the stored booking fields, in characters. The record
// validation tags use the same values.
const (
	MaxNameLen        = 200
	MaxEmailLen       = 320
	MaxPhoneLen       = 50
	MaxDestinationLen = 200
)

// ValidationError is a rejected slot answer. Message is shown to the user
// before the slot is asked again.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrInvalidEmail   = &ValidationError{"That doesn't look like a valid email address."}
	ErrInvalidDate    = &ValidationError{"Please enter a valid date in the format **YYYY-MM-DD**."}
	ErrGuestsNotInt   = &ValidationError{"Please enter the number of guests as a number."}
	ErrGuestsNotAbove = &ValidationError{"Number of guests must be greater than zero."}
	ErrEmptyAnswer    = &ValidationError{"I didn't catch that."}
	ErrDateOrder      = &ValidationError{"Check-out must be after the check-in date."}
	ErrTooLong        = &ValidationError{"That answer is too long. Please shorten it."}
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateFunc checks one raw answer and returns its normalized value. The
// error text is shown to the user as is.
type ValidateFunc func(raw string) (string, error)

// Slot is one required booking field.
type Slot struct {
	Key      string
	Prompt   string
	Validate ValidateFunc
}

// Schema is the ordered list of slots. Slots are filled strictly in order.
type Schema []Slot

// DefaultSchema returns the hotel booking slots.
func DefaultSchema() Schema {
	return Schema{
		{Key: SlotName, Prompt: "full name", Validate: TextUpTo(MaxNameLen)},
		{Key: SlotEmail, Prompt: "email address", Validate: ValidateEmail},
		{Key: SlotPhone, Prompt: "phone number", Validate: TextUpTo(MaxPhoneLen)},
		{Key: SlotDestination, Prompt: "destination", Validate: TextUpTo(MaxDestinationLen)},
		{Key: SlotCheckIn, Prompt: "check-in date (YYYY-MM-DD)", Validate: ValidateDate},
		{Key: SlotCheckOut, Prompt: "check-out date (YYYY-MM-DD)", Validate: ValidateDate},
		{Key: SlotGuests, Prompt: "number of guests", Validate: ValidateGuests},
	}
}

// MissingSlot returns the first slot whose value is absent or empty.
func (s Schema) MissingSlot(values map[string]string) (Slot, bool) {
	for _, slot := range s {
		if values[slot.Key] == "" {
			return slot, true
		}
	}
	return Slot{}, false
}

// Lookup returns the slot with the given key.
func (s Schema) Lookup(key string) (Slot, bool) {
	for _, slot := range s {
		if slot.Key == key {
			return slot, true
		}
	}
	return Slot{}, false
}

// ValidateText accepts any non-empty trimmed string.
func ValidateText(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", ErrEmptyAnswer
	}
	return v, nil
}

// TextUpTo accepts a non-empty trimmed string of at most max characters.
func TextUpTo(max int) ValidateFunc {
	return func(raw string) (string, error) {
		v, err := ValidateText(raw)
		if err != nil {
			return "", err
		}
		if utf8.RuneCountInString(v) > max {
			return "", ErrTooLong
		}
		return v, nil
	}
}

// ValidateEmail accepts a basic local@domain.tld address.
func ValidateEmail(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if !emailPattern.MatchString(v) {
		return "", ErrInvalidEmail
	}
	if utf8.RuneCountInString(v) > MaxEmailLen {
		return "", ErrTooLong
	}
	return v, nil
}

// ValidateDate accepts a YYYY-MM-DD calendar date.
func ValidateDate(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}

// ValidateGuests accepts a base-10 integer greater than zero.
func ValidateGuests(raw string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrGuestsNotInt
	}
	if n <= 0 {
		return "", ErrGuestsNotAbove
	}
	return strconv.Itoa(n), nil
}
