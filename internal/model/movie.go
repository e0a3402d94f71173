package model

// Movie is a catalog entry. Each movie owns one ticket price and an ordered
// list of schedules. Schedules are addressed by position, and duplicates are
// allowed.
//
// Fields:
//  ID        – sequential identifier, never reused within a process.
//  Title     – display title.
//  Genre     – free-form genre label.
//  Price     – ticket price snapshotted into new bookings.
//  Schedules – showings in insertion order.
type Movie struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Genre     string     `json:"genre"`
	Price     Money      `json:"price"`
	Schedules []Schedule `json:"schedules"`
}

// Clone returns a copy whose schedule slice does not alias the receiver's.
func (m Movie) Clone() Movie {
	out := m
	out.Schedules = append([]Schedule(nil), m.Schedules...)
	return out
}

// HasSchedule reports whether the movie lists exactly this date and time.
func (m Movie) HasSchedule(s Schedule) bool {
	for _, existing := range m.Schedules {
		if existing == s {
			return true
		}
	}
	return false
}

// HasDate reports whether any schedule of the movie falls on date.
func (m Movie) HasDate(date string) bool {
	for _, existing := range m.Schedules {
		if existing.Date == date {
			return true
		}
	}
	return false
}

// Dates returns the distinct schedule dates in first-seen order.
func (m Movie) Dates() []string {
	seen := make(map[string]bool, len(m.Schedules))
	out := make([]string, 0, len(m.Schedules))
	for _, s := range m.Schedules {
		if !seen[s.Date] {
			seen[s.Date] = true
			out = append(out, s.Date)
		}
	}
	return out
}
