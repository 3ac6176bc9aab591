// internal/market/attendance.go
package market

import "time"

// DefaultAttendanceWindow is how long a vendor has to check in after
// booking before the stall is released again.
const DefaultAttendanceWindow = 24 * time.Hour

// Deadline returns the instant by which the first check-in must happen.
func Deadline(bookingTime time.Time, window time.Duration) time.Time {
	return bookingTime.Add(window)
}

// AttendedOn reports whether lastAttendance falls on the same local
// calendar day as ref.
func AttendedOn(lastAttendance *time.Time, ref time.Time) bool {
	if lastAttendance == nil {
		return false
	}
	y1, m1, d1 := lastAttendance.Local().Date()
	y2, m2, d2 := ref.Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// attended reports whether the vendor has checked in for the current
// booking. An attendance stamp that predates the booking belongs to an
// earlier booking and does not count.
func attended(lastAttendance *time.Time, bookingTime time.Time) bool {
	return lastAttendance != nil && !lastAttendance.Before(bookingTime)
}

// ShouldExpire is the pure expiry decision: the deadline has passed and
// the vendor never checked in for this booking. Callers must re-read the
// stall immediately before acting on a true result.
func ShouldExpire(now, bookingTime time.Time, lastAttendance *time.Time, window time.Duration) bool {
	return now.After(Deadline(bookingTime, window)) && !attended(lastAttendance, bookingTime)
}
