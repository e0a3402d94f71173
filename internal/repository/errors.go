// Package repository persists the ledger's full state. A Gateway loads and
// saves a Snapshot of the four record streams: users, movies, bookings and
// seats. Saves always rewrite everything; there is no incremental append.
package repository

import "errors"

// ErrMalformedRecord marks a stored line that could not be decoded. Loaders
// log and skip such lines instead of failing.
var ErrMalformedRecord = errors.New("malformed record")
