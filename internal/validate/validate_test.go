package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
)

func TestIdentifier(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"validuser", true},
		{"a", true},
		{"ABCdef0123", true},
		{strings.Repeat("a", 15), true},
		{strings.Repeat("a", 16), false},
		{"", false},
		{"ab cd", false},
		{"tab\tuser", false},
		{"user!", false},
		{"user_name", false},
		{"사용자", false},
	}
	for _, tc := range cases {
		err := Identifier(tc.in)
		if tc.ok {
			assert.NoError(t, err, "id %q", tc.in)
			continue
		}
		assert.ErrorIs(t, err, errs.ErrInvalidIdentifier, "id %q", tc.in)
	}
}

func TestPassword(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Pass123!", true},
		{"@@!!", true},
		{strings.Repeat("x", 30), true},
		{strings.Repeat("x", 31), false},
		{"", false},
		{"pass word", false},
		{"pass#1", false},
		{"pässword", false},
	}
	for _, tc := range cases {
		err := Password(tc.in)
		if tc.ok {
			assert.NoError(t, err, "pw %q", tc.in)
			continue
		}
		assert.ErrorIs(t, err, errs.ErrInvalidPassword, "pw %q", tc.in)
	}
}

func TestRoom(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4} {
		r, err := Room(n)
		require.NoError(t, err)
		assert.Equal(t, roombook.Room(n), r)
	}
	for _, n := range []int{0, 5, -1, 100} {
		_, err := Room(n)
		assert.ErrorIs(t, err, errs.ErrInvalidRoom, "room %d", n)
	}
}

func TestDate(t *testing.T) {
	d, err := Date("2024.05.01")
	require.NoError(t, err)
	assert.Equal(t, roombook.Date{Year: 2024, Month: time.May, Day: 1}, d)
	assert.Equal(t, "2024.05.01", d.String())

	d, err = Date("2024.02.29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day)

	for _, in := range []string{
		"2023.02.30",
		"2023.02.29",
		"2024.04.31",
		"2024.13.01",
		"2024.00.10",
		"2024.05.00",
		"2024.5.01",
		"2024-05-01",
		"24.05.01",
		"2024.05.01 ",
		"0000.01.01",
		"",
		"tomorrow",
	} {
		_, err := Date(in)
		assert.ErrorIs(t, err, errs.ErrInvalidDate, "date %q", in)
	}
}
