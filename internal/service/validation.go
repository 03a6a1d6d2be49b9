package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orgatagova/orgatagova/internal/idx"
	"github.com/orgatagova/orgatagova/internal/model"
)

const (
	MaxSeats          = 20
	MaxDescriptionLen = 500
	minLocationLen    = 3

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var invitationCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// CreateCarpoolData is the untyped creation form as submitted by clients.
// AvailableSeats stays a string so parse failures are reported as
// validation errors.
type CreateCarpoolData struct {
	Departure           string `json:"departure"`
	Arrival             string `json:"arrival"`
	Description         string `json:"description"`
	DepartureDate       string `json:"departureDate"`
	DepartureTime       string `json:"departureTime"`
	AvailableSeats      string `json:"availableSeats"`
	IsDriverSoberNeeded bool   `json:"isDriverSoberNeeded"`
	IsPrivate           bool   `json:"isPrivate"`
}

// ValidateCarpoolCreation checks data against the creation rules and reports
// the first violation in this order: departure, arrival, date, time, seat
// count, seat range, departure in the future, departure length, arrival
// length, description length.  Date and time are read in now's location.
func ValidateCarpoolCreation(data CreateCarpoolData, now time.Time) error {
	departure := strings.TrimSpace(data.Departure)
	arrival := strings.TrimSpace(data.Arrival)

	if departure == "" {
		return Validation("Departure location is required")
	}
	if arrival == "" {
		return Validation("Arrival location is required")
	}
	if strings.TrimSpace(data.DepartureDate) == "" {
		return Validation("Departure date is required")
	}
	if strings.TrimSpace(data.DepartureTime) == "" {
		return Validation("Departure time is required")
	}

	seats, err := strconv.Atoi(strings.TrimSpace(data.AvailableSeats))
	if err != nil || seats <= 0 {
		return Validation("Available seats must be greater than 0")
	}
	if seats > MaxSeats {
		return Validation("Available seats cannot exceed 20")
	}

	departs, err := departureInstant(data.DepartureDate, data.DepartureTime, now.Location())
	if err != nil {
		return err
	}
	if !departs.After(now) {
		return Validation("Departure date and time must be in the future")
	}

	if utf8.RuneCountInString(departure) < minLocationLen {
		return Validation("Departure location must be at least 3 characters long")
	}
	if utf8.RuneCountInString(arrival) < minLocationLen {
		return Validation("Arrival location must be at least 3 characters long")
	}
	if utf8.RuneCountInString(data.Description) > MaxDescriptionLen {
		return Validation("Description cannot exceed 500 characters")
	}
	return nil
}

func departureInstant(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, Validation("Invalid departure date")
	}
	hm, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), nil
}

func parseClock(clock string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, Validation("Invalid departure time")
	}
	return t, nil
}

// ValidateID accepts any non-blank identifier.
func ValidateID(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrInvalidID
	}
	return nil
}

// ValidateIDs fails when any of values is blank.
func ValidateIDs(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidIDs
		}
	}
	return nil
}

// ValidateInvitationCode checks that code, once trimmed, is 6 to 12
// alphanumeric characters.
func ValidateInvitationCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return Validation("Invitation code is required")
	}
	if len(code) < 6 || len(code) > 12 {
		return Validation("Invalid invitation code format")
	}
	if !invitationCodePattern.MatchString(code) {
		return Validation("Invitation code contains invalid characters")
	}
	return nil
}

// validateCarpoolID rejects blank ids and reports anything that is not a
// ULID as an unknown carpool, since no such row can exist.
func validateCarpoolID(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := idx.Parse(id); err != nil {
		return ErrCarpoolNotFound
	}
	return nil
}

// ValidateCarpoolActive fails for a missing, finished or archived carpool.
func ValidateCarpoolActive(c *model.Carpool) error {
	switch {
	case c == nil:
		return ErrCarpoolNotFound
	case c.Active():
		return nil
	case c.IsFinished:
		return ErrCarpoolFinished
	case c.IsArchived:
		return ErrCarpoolArchived
	}
	return nil
}
