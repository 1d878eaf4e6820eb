package domain

import "time"

// DateLayout is how timestamps are shown on the board.
const DateLayout = "January 2, 2006 3:04 PM"

// FormatDate renders t with DateLayout. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
