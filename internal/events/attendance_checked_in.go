package events

import "time"

const AttendanceCheckedInTopic = "attendance.checkin.v1"

type AttendanceCheckedInEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	AttendanceID int64     `json:"attendance_id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CheckedInAt  time.Time `json:"checked_in_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}
