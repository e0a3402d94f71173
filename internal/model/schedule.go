package model

import (
	"fmt"
	"strconv"
)

// Schedule identifies one showing of a movie by date and time. It is a value
// type: bookings copy it, so later edits to a movie's schedule list never
// reach existing bookings.
//
// Fields:
//  Date – showing date, YYYY-MM-DD.
//  Time – start time, HH:MM.
type Schedule struct {
	Date string `json:"date" yaml:"date"`
	Time string `json:"time" yaml:"time"`
}

// NewSchedule validates date and time and returns the schedule.
func NewSchedule(date, clock string) (Schedule, error) {
	if err := ValidateDate(date); err != nil {
		return Schedule{}, err
	}
	if err := ValidateTime(clock); err != nil {
		return Schedule{}, err
	}
	return Schedule{Date: date, Time: clock}, nil
}

// String renders the schedule as "YYYY-MM-DD HH:MM".
func (s Schedule) String() string { return s.Date + " " + s.Time }

// ValidateDate checks the YYYY-MM-DD layout with year >= 2023, month 1-12
// and day 1-31. Days are range checked only, so 2025-02-31 is accepted.
func ValidateDate(date string) error {
	if len(date) != 10 || date[4] != '-' || date[7] != '-' ||
		!isDigits(date[0:4]) || !isDigits(date[5:7]) || !isDigits(date[8:10]) {
		return fmt.Errorf("%w: date %q must use YYYY-MM-DD", ErrValidation, date)
	}
	year, errY := strconv.Atoi(date[0:4])
	month, errM := strconv.Atoi(date[5:7])
	day, errD := strconv.Atoi(date[8:10])
	if errY != nil || errM != nil || errD != nil {
		return fmt.Errorf("%w: date %q must use YYYY-MM-DD", ErrValidation, date)
	}
	if year < 2023 || month < 1 || month > 12 || day < 1 || day > 31 {
		return fmt.Errorf("%w: date %q is out of range", ErrValidation, date)
	}
	return nil
}

// ValidateTime checks the HH:MM layout with hour 0-23 and minute 0-59.
func ValidateTime(clock string) error {
	if len(clock) != 5 || clock[2] != ':' || !isDigits(clock[0:2]) || !isDigits(clock[3:5]) {
		return fmt.Errorf("%w: time %q must use HH:MM", ErrValidation, clock)
	}
	hour, errH := strconv.Atoi(clock[0:2])
	minute, errM := strconv.Atoi(clock[3:5])
	if errH != nil || errM != nil {
		return fmt.Errorf("%w: time %q must use HH:MM", ErrValidation, clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: time %q is out of range", ErrValidation, clock)
	}
	return nil
}

// isDigits reports whether s is non-empty and made only of ASCII digits.
// strconv.Atoi alone would also accept a sign.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
