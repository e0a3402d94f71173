// Package model holds the ledger's entities and the error kinds shared by
// the store, repository, service and handler layers. Callers distinguish
// failures with errors.Is against the sentinels below; operations wrap them
// with detail using fmt.Errorf("%w: ...").
package model

import "errors"

// ErrNotFound is returned when a movie, schedule, booking or seat does not
// exist. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrSeatUnavailable is returned when a seat is already booked, or when a
// booking names a seat that is not part of the inventory.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrScheduleInUse is returned when removing a schedule, a seat or part of a
// seat grid is blocked by an active booking.
var ErrScheduleInUse = errors.New("schedule in use")

// ErrMovieInUse is returned when a movie with bookings is deleted without
// confirming the cascade.
var ErrMovieInUse = errors.New("movie in use")

// ErrValidation is returned for malformed dates, times, prices, seat labels,
// usernames, passwords or payment modes.
var ErrValidation = errors.New("validation error")

// ErrPersistence is returned when the underlying storage cannot be read or
// written.
var ErrPersistence = errors.New("persistence error")

// ErrUserExists is returned when registering a username that is taken.
var ErrUserExists = errors.New("username already exists")

// ErrUnauthorized is returned when a username/password pair does not match.
var ErrUnauthorized = errors.New("invalid username or password")
