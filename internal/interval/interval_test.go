package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRules() Rules {
	return Rules{
		ClosedWeekday: time.Sunday,
		MaxSpanDays:   7,
		MinDuration:   time.Hour,
		Location:      time.UTC,
	}
}

func TestValidate(t *testing.T) {
	// 2024-06-09 is a Sunday, 2024-06-10 a Monday.
	testCases := []struct {
		name      string
		startDate string
		endDate   string
		startTime string
		endTime   string
		wantErr   error
		wantDays  int
	}{
		{
			name:      "single day one hour",
			startDate: "2024-06-10", endDate: "2024-06-10",
			startTime: "09:00", endTime: "10:00",
			wantDays: 1,
		},
		{
			name:      "missing end time",
			startDate: "2024-06-10", endDate: "2024-06-10",
			startTime: "09:00", endTime: "",
			wantErr: ErrMissingFields,
		},
		{
			name:      "malformed start date",
			startDate: "2024-6-10", endDate: "2024-06-10",
			startTime: "09:00", endTime: "10:00",
			wantErr: ErrMissingFields,
		},
		{
			name:      "start on closure day",
			startDate: "2024-06-09", endDate: "2024-06-10",
			startTime: "09:00", endTime: "10:00",
			wantErr: ErrClosureDayStart,
		},
		{
			name:      "end on closure day",
			startDate: "2024-06-10", endDate: "2024-06-16",
			startTime: "09:00", endTime: "10:00",
			wantErr: ErrClosureDayEnd,
		},
		{
			name:      "closure day reported before date order",
			startDate: "2024-06-09", endDate: "2024-06-08",
			startTime: "09:00", endTime: "10:00",
			wantErr: ErrClosureDayStart,
		},
		{
			name:      "end date before start date",
			startDate: "2024-06-11", endDate: "2024-06-10",
			startTime: "09:00", endTime: "10:00",
			wantErr: ErrEndBeforeStart,
		},
		{
			name:      "span of exactly seven days",
			startDate: "2024-06-11", endDate: "2024-06-17",
			startTime: "09:00", endTime: "10:00",
			wantDays: 7,
		},
		{
			name:      "span of eight days",
			startDate: "2024-06-10", endDate: "2024-06-17",
			startTime: "09:00", endTime: "10:00",
			wantErr: ErrDurationTooLong,
		},
		{
			name:      "day span reported before time order",
			startDate: "2024-06-11", endDate: "2024-06-18",
			startTime: "10:00", endTime: "09:00",
			wantErr: ErrDurationTooLong,
		},
		{
			name:      "end time before start time on one day",
			startDate: "2024-06-10", endDate: "2024-06-10",
			startTime: "10:00", endTime: "09:00",
			wantErr: ErrEndBeforeStartInstant,
		},
		{
			name:      "fifty-nine minutes",
			startDate: "2024-06-10", endDate: "2024-06-10",
			startTime: "09:00", endTime: "09:59",
			wantErr: ErrDurationTooShort,
		},
		{
			name:      "multi-day booking exempt from minimum duration",
			startDate: "2024-06-10", endDate: "2024-06-11",
			startTime: "23:50", endTime: "00:10",
			wantDays: 2,
		},
		{
			name:      "span across year boundary",
			startDate: "2024-12-30", endDate: "2025-01-02",
			startTime: "09:00", endTime: "08:00",
			wantDays: 4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Validate(tc.startDate, tc.endDate, tc.startTime, tc.endTime, testRules())
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantDays, got.Days)
			assert.True(t, got.StartsAt.Before(got.EndsAt), "start must precede end")
		})
	}
}

func TestValidateInstants(t *testing.T) {
	got, err := Validate("2024-06-10", "2024-06-10", "09:00", "10:00", testRules())
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), got.StartsAt)
	assert.Equal(t, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), got.EndsAt)
}

func TestElapsed(t *testing.T) {
	end := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one minute past", time.Date(2024, 6, 10, 10, 1, 0, 0, time.UTC), true},
		{"exactly at end", time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), false},
		{"seconds within the end minute", time.Date(2024, 6, 10, 10, 0, 45, 0, time.UTC), false},
		{"before end", time.Date(2024, 6, 10, 9, 59, 0, 0, time.UTC), false},
		{"next day", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Elapsed(end, tc.now))
		})
	}
}
