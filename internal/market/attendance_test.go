// internal/market/attendance_test.go
package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadline(t *testing.T) {
	booked := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	assert.Equal(t, booked.Add(24*time.Hour), Deadline(booked, DefaultAttendanceWindow))
	assert.Equal(t, booked.Add(48*time.Hour), Deadline(booked, 48*time.Hour))
}

func TestAttendedOn(t *testing.T) {
	morning := time.Date(2025, 3, 10, 8, 30, 0, 0, time.Local)
	evening := time.Date(2025, 3, 10, 21, 0, 0, 0, time.Local)
	nextDay := time.Date(2025, 3, 11, 0, 5, 0, 0, time.Local)

	assert.False(t, AttendedOn(nil, evening))
	assert.True(t, AttendedOn(&morning, evening), "same calendar day counts regardless of hour")
	assert.False(t, AttendedOn(&morning, nextDay), "just past midnight is a new day")
}

func TestShouldExpire(t *testing.T) {
	booked := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	attendedAt := booked.Add(23 * time.Hour)
	staleAttendance := booked.Add(-48 * time.Hour)

	cases := []struct {
		name           string
		now            time.Time
		lastAttendance *time.Time
		want           bool
	}{
		{"before deadline, never attended", booked.Add(23 * time.Hour), nil, false},
		{"past deadline, never attended", booked.Add(25 * time.Hour), nil, true},
		{"past deadline, attended in time", booked.Add(25 * time.Hour), &attendedAt, false},
		{"past deadline, attendance from an earlier booking", booked.Add(25 * time.Hour), &staleAttendance, true},
		{"exactly at deadline", Deadline(booked, DefaultAttendanceWindow), nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldExpire(tc.now, booked, tc.lastAttendance, DefaultAttendanceWindow)
			assert.Equal(t, tc.want, got)
		})
	}
}
