package timecalc_test

import (
	"testing"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/timecalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
		wantErr    bool
	}{
		{"09:00", "10:30", 90, false},
		{"10:30", "11:00", 30, false},
		{"00:00", "23:59", 1439, false},
		{"12:00", "12:00", 0, false},
		{"14:00", "13:00", -60, false},
		{"9:00", "10:00", 0, true},
		{"09:00", "24:00", 0, true},
		{"09:60", "10:00", 0, true},
		{"", "10:00", 0, true},
		{"ab:cd", "10:00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.start+"-"+tt.end, func(t *testing.T) {
			got, err := timecalc.DurationMinutes(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, timecalc.ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0h 0m"},
		{5, "0h 5m"},
		{60, "1h 0m"},
		{125, "2h 5m"},
		{1439, "23h 59m"},
		{-30, "0h 0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timecalc.FormatDuration(tt.minutes), "FormatDuration(%d)", tt.minutes)
	}
}

func TestFormatDuration_RoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 1, 59, 60, 61, 125, 480, 1439, 10000} {
		got, err := timecalc.ParseDuration(timecalc.FormatDuration(minutes))
		require.NoError(t, err)
		assert.Equal(t, minutes, got)
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, s := range []string{"", "2h", "2h 60m", "two hours"} {
		_, err := timecalc.ParseDuration(s)
		assert.Error(t, err, s)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"09:05", "9:05 AM"},
		{"00:30", "12:30 AM"},
		{"12:00", "12:00 PM"},
		{"13:00", "1:00 PM"},
		{"23:59", "11:59 PM"},
		{"not a time", "not a time"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timecalc.FormatClock(tt.in), "FormatClock(%q)", tt.in)
	}
}

func TestParseDate(t *testing.T) {
	d, err := timecalc.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	for _, s := range []string{"2023-02-29", "2024-1-10", "10/01/2024", ""} {
		_, err := timecalc.ParseDate(s)
		assert.ErrorIs(t, err, timecalc.ErrInvalidDate, s)
	}
}

func TestFormatLongDate(t *testing.T) {
	assert.Equal(t, "Wednesday, January 10, 2024", timecalc.FormatLongDate("2024-01-10"))
	assert.Equal(t, "garbage", timecalc.FormatLongDate("garbage"))
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		sum, count, want int
	}{
		{201, 2, 101},
		{200, 2, 100},
		{1, 2, 1},
		{1, 3, 0},
		{2, 3, 1},
		{200, 3, 67},
		{0, 5, 0},
		{10, 0, 0},
		{-3, 2, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timecalc.RoundHalfUp(tt.sum, tt.count), "RoundHalfUp(%d, %d)", tt.sum, tt.count)
	}
}
