package interval

import (
	"errors"
	"time"
)

// Field layouts accepted from callers.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Validation failures, one per business rule, in the order the rules run.
// Unparseable date or time fields are reported as ErrMissingFields: a
// field that cannot be combined into an instant is as good as absent.
var (
	ErrMissingFields         = errors.New("start date, end date, start time and end time are required")
	ErrClosureDayStart       = errors.New("start date falls on the weekly closure day")
	ErrClosureDayEnd         = errors.New("end date falls on the weekly closure day")
	ErrEndBeforeStart        = errors.New("end date is before start date")
	ErrDurationTooLong       = errors.New("booking exceeds the maximum day span")
	ErrEndBeforeStartInstant = errors.New("end time is before start time")
	ErrDurationTooShort      = errors.New("single-day booking is shorter than the minimum duration")
)

// Rules are the business constraints applied by Validate.
type Rules struct {
	ClosedWeekday time.Weekday
	MaxSpanDays   int
	MinDuration   time.Duration
	Location      *time.Location
}

// Interval is a validated booking interval with its combined instants.
type Interval struct {
	StartsAt time.Time
	EndsAt   time.Time
	Days     int // inclusive calendar-day span
}

// Combine merges a calendar date and a time-of-day into one instant in loc.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
}

// DaySpan returns the calendar-day span between two instants, inclusive of
// both endpoint days.
func DaySpan(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	return int(e.Sub(s).Round(24*time.Hour)/(24*time.Hour)) + 1
}

// Cutoff truncates now to the minute. All elapsed-ness comparisons use
// minute granularity, matching the resolution of the submitted times.
func Cutoff(now time.Time) time.Time {
	return now.Truncate(time.Minute)
}

// Elapsed reports whether end has passed relative to now. A booking ending
// at 10:01 is elapsed from 10:02:00, never mid-minute.
func Elapsed(end, now time.Time) bool {
	return end.Before(Cutoff(now))
}

// Validate checks a requested interval against the business rules and
// returns its combined instants. Rules run in a fixed order and the first
// failure wins.
func Validate(startDate, endDate, startTime, endTime string, r Rules) (Interval, error) {
	if startDate == "" || endDate == "" || startTime == "" || endTime == "" {
		return Interval{}, ErrMissingFields
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	startDay, err := time.ParseInLocation(DateLayout, startDate, loc)
	if err != nil {
		return Interval{}, ErrMissingFields
	}
	endDay, err := time.ParseInLocation(DateLayout, endDate, loc)
	if err != nil {
		return Interval{}, ErrMissingFields
	}
	if startDay.Weekday() == r.ClosedWeekday {
		return Interval{}, ErrClosureDayStart
	}
	if endDay.Weekday() == r.ClosedWeekday {
		return Interval{}, ErrClosureDayEnd
	}
	if endDay.Before(startDay) {
		return Interval{}, ErrEndBeforeStart
	}
	days := DaySpan(startDay, endDay)
	if days > r.MaxSpanDays {
		return Interval{}, ErrDurationTooLong
	}
	startsAt, err := Combine(startDate, startTime, loc)
	if err != nil {
		return Interval{}, ErrMissingFields
	}
	endsAt, err := Combine(endDate, endTime, loc)
	if err != nil {
		return Interval{}, ErrMissingFields
	}
	if endsAt.Before(startsAt) {
		return Interval{}, ErrEndBeforeStartInstant
	}
	if days == 1 && endsAt.Sub(startsAt) < r.MinDuration {
		return Interval{}, ErrDurationTooShort
	}
	return Interval{StartsAt: startsAt, EndsAt: endsAt, Days: days}, nil
}
