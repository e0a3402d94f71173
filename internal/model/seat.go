package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Default seat grid created for every new showing date: rows A..H with
// seats numbered 1..10.
const (
	DefaultRows = 8
	DefaultCols = 10
)

// SeatKey addresses one seat map: a movie on a showing date. Schedules that
// share a date share the map.
type SeatKey struct {
	MovieID int
	Date    string
}

func (k SeatKey) String() string { return strconv.Itoa(k.MovieID) + "@" + k.Date }

// SeatRecord is the persisted form of one seat's availability.
//
// Fields:
//  MovieID   – catalog movie.
//  Date      – showing date.
//  Label     – seat label such as "A1".
//  Available – false once a booking holds the seat.
type SeatRecord struct {
	MovieID   int    `json:"movie_id"`
	Date      string `json:"date"`
	Label     string `json:"seat"`
	Available bool   `json:"available"`
}

// SeatState is one cell of a rendered seat layout.
type SeatState struct {
	Label     string `json:"seat"`
	Row       string `json:"row"`
	Number    int    `json:"number"`
	Available bool   `json:"available"`
}

// IndexToRowLabel converts a zero-based index to a row label: A..Z, then
// AA, AB and so on.
func IndexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// RowLabelToIndex is the inverse of IndexToRowLabel.
func RowLabelToIndex(label string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return -1, false
	}
	n := 0
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return -1, false
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, true
}

// SeatLabel joins a zero-based row index and a one-based seat number.
func SeatLabel(row, number int) string {
	return IndexToRowLabel(row) + strconv.Itoa(number)
}

// ParseSeat splits a label such as "c5" into its row ("C") and number (5).
// Labels must be letters followed by a positive number.
func ParseSeat(label string) (row string, number int, err error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || !isDigits(s[i:]) {
		return "", 0, fmt.Errorf("%w: seat %q must be a row letter followed by a number", ErrValidation, label)
	}
	n, convErr := strconv.Atoi(s[i:])
	if convErr != nil || n < 1 {
		return "", 0, fmt.Errorf("%w: seat %q must be a row letter followed by a number", ErrValidation, label)
	}
	return s[:i], n, nil
}

// NormalizeSeat validates label and returns it in canonical upper case form
// ("c05" becomes "C5").
func NormalizeSeat(label string) (string, error) {
	row, n, err := ParseSeat(label)
	if err != nil {
		return "", err
	}
	return row + strconv.Itoa(n), nil
}

// GridLabels returns the labels of a rows x cols grid in row-major order.
func GridLabels(rows, cols int) []string {
	out := make([]string, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 1; c <= cols; c++ {
			out = append(out, SeatLabel(r, c))
		}
	}
	return out
}

// LessSeat orders labels by row index, then by number. Unparseable labels
// sort after valid ones, lexically.
func LessSeat(a, b string) bool {
	ra, na, errA := ParseSeat(a)
	rb, nb, errB := ParseSeat(b)
	switch {
	case errA != nil && errB != nil:
		return a < b
	case errA != nil:
		return false
	case errB != nil:
		return true
	}
	ia, _ := RowLabelToIndex(ra)
	ib, _ := RowLabelToIndex(rb)
	if ia != ib {
		return ia < ib
	}
	return na < nb
}
