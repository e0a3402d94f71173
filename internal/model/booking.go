package model

import (
	"fmt"
	"strings"
)

// PaymentMode is the label recorded with a booking. No settlement happens;
// the mode is informational only.
type PaymentMode string

const (
	PaymentCash  PaymentMode = "Cash"
	PaymentCard  PaymentMode = "Credit/Debit Card"
	PaymentGCash PaymentMode = "GCash"
)

// PaymentModes lists the accepted labels in menu order.
var PaymentModes = []PaymentMode{PaymentCash, PaymentCard, PaymentGCash}

// ParsePaymentMode matches s case-insensitively against PaymentModes.
func ParsePaymentMode(s string) (PaymentMode, error) {
	trimmed := strings.TrimSpace(s)
	for _, m := range PaymentModes {
		if strings.EqualFold(trimmed, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown payment mode %q", ErrValidation, s)
}

// Booking records one seat sold to one customer for one showing.
//
// Fields:
//  ID               – sequential identifier.
//  CustomerUsername – directory username (not enforced as a foreign key).
//  MovieID          – catalog movie.
//  Schedule         – copied by value from the movie at booking time.
//  Seat             – seat label such as "C5".
//  Price            – movie price at booking time.
//  PaymentMode      – payment label.
type Booking struct {
	ID               int         `json:"id"`
	CustomerUsername string      `json:"customer_username"`
	MovieID          int         `json:"movie_id"`
	Schedule         Schedule    `json:"schedule"`
	Seat             string      `json:"seat"`
	Price            Money       `json:"price"`
	PaymentMode      PaymentMode `json:"payment_mode"`
}

// SeatKey returns the inventory key this booking occupies.
func (b Booking) SeatKey() SeatKey {
	return SeatKey{MovieID: b.MovieID, Date: b.Schedule.Date}
}
