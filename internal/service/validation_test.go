package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/service"
)

func TestValidateCarpoolCreation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*service.CreateCarpoolData)
		want   string
	}{
		{"valid", func(*service.CreateCarpoolData) {}, ""},
		{"departure missing", func(d *service.CreateCarpoolData) { d.Departure = "  " }, "Departure location is required"},
		{"arrival missing", func(d *service.CreateCarpoolData) { d.Arrival = "" }, "Arrival location is required"},
		{"date missing", func(d *service.CreateCarpoolData) { d.DepartureDate = "" }, "Departure date is required"},
		{"time missing", func(d *service.CreateCarpoolData) { d.DepartureTime = "" }, "Departure time is required"},
		{"seats not a number", func(d *service.CreateCarpoolData) { d.AvailableSeats = "two" }, "Available seats must be greater than 0"},
		{"seats zero", func(d *service.CreateCarpoolData) { d.AvailableSeats = "0" }, "Available seats must be greater than 0"},
		{"seats empty", func(d *service.CreateCarpoolData) { d.AvailableSeats = "" }, "Available seats must be greater than 0"},
		{"seats over limit", func(d *service.CreateCarpoolData) { d.AvailableSeats = "21" }, "Available seats cannot exceed 20"},
		{"seats at limit", func(d *service.CreateCarpoolData) { d.AvailableSeats = "20" }, ""},
		{"in the past", func(d *service.CreateCarpoolData) { d.DepartureDate = "2030-04-30" }, "Departure date and time must be in the future"},
		{"exactly now", func(d *service.CreateCarpoolData) { d.DepartureDate, d.DepartureTime = "2030-05-01", "12:00" }, "Departure date and time must be in the future"},
		{"one minute ahead", func(d *service.CreateCarpoolData) { d.DepartureDate, d.DepartureTime = "2030-05-01", "12:01" }, ""},
		{"bad date", func(d *service.CreateCarpoolData) { d.DepartureDate = "02/05/2030" }, "Invalid departure date"},
		{"bad time", func(d *service.CreateCarpoolData) { d.DepartureTime = "8h30" }, "Invalid departure time"},
		{"departure short", func(d *service.CreateCarpoolData) { d.Departure = " Ly " }, "Departure location must be at least 3 characters long"},
		{"arrival short", func(d *service.CreateCarpoolData) { d.Arrival = "Pa" }, "Arrival location must be at least 3 characters long"},
		{"description too long", func(d *service.CreateCarpoolData) { d.Description = strings.Repeat("x", 501) }, "Description cannot exceed 500 characters"},
		{"description at limit", func(d *service.CreateCarpoolData) { d.Description = strings.Repeat("é", 500) }, ""},
		// seats are checked before the date, and the date before location length
		{"priority seats over past", func(d *service.CreateCarpoolData) {
			d.AvailableSeats = "0"
			d.DepartureDate = "2000-01-01"
		}, "Available seats must be greater than 0"},
		{"priority past over short", func(d *service.CreateCarpoolData) {
			d.Departure = "Ly"
			d.DepartureDate = "2000-01-01"
		}, "Departure date and time must be in the future"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := validData("3")
			tc.mutate(&data)
			err := service.ValidateCarpoolCreation(data, fixedNow)
			if tc.want == "" {
				require.NoError(t, err)
				return
			}
			requireKind(t, err, service.KindValidation)
			require.EqualError(t, err, tc.want)
		})
	}
}

func TestValidateCarpoolCreationUsesLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// 12:00 UTC is 14:00 in Paris in May
	now := fixedNow.In(paris)
	data := validData("2")
	data.DepartureDate = "2030-05-01"

	data.DepartureTime = "13:30"
	require.Error(t, service.ValidateCarpoolCreation(data, now))

	data.DepartureTime = "14:30"
	require.NoError(t, service.ValidateCarpoolCreation(data, now))
}

func TestValidateIDs(t *testing.T) {
	require.NoError(t, service.ValidateID("abc"))
	require.ErrorIs(t, service.ValidateID(""), service.ErrInvalidID)
	require.ErrorIs(t, service.ValidateID(" \t"), service.ErrInvalidID)

	require.NoError(t, service.ValidateIDs("a", "b"))
	require.ErrorIs(t, service.ValidateIDs("a", " "), service.ErrInvalidIDs)
}

func TestValidateInvitationCode(t *testing.T) {
	cases := map[string]string{
		"ABC123":         "",
		" abc123XYZ ":    "",
		"ABCDEFGHIJKL":   "",
		"":               "Invitation code is required",
		"   ":            "Invitation code is required",
		"ABC12":          "Invalid invitation code format",
		"ABCDEFGHIJKLM":  "Invalid invitation code format",
		"ABC-123":        "Invitation code contains invalid characters",
		"ÀBCDEF":         "Invitation code contains invalid characters",
	}
	for code, want := range cases {
		err := service.ValidateInvitationCode(code)
		if want == "" {
			require.NoError(t, err, code)
			continue
		}
		require.EqualError(t, err, want, code)
	}
}

func TestValidateCarpoolActive(t *testing.T) {
	require.ErrorIs(t, service.ValidateCarpoolActive(nil), service.ErrCarpoolNotFound)
	require.NoError(t, service.ValidateCarpoolActive(&model.Carpool{}))
	require.ErrorIs(t, service.ValidateCarpoolActive(&model.Carpool{IsFinished: true, IsArchived: true}), service.ErrCarpoolFinished)
	require.ErrorIs(t, service.ValidateCarpoolActive(&model.Carpool{IsArchived: true}), service.ErrCarpoolArchived)
}
