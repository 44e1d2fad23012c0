package entities

import "time"

// CalendarEvent is a normalized scheduled interview slot. ID is the remote
// id when present, otherwise derived deterministically from start, end and
// title. Start is always before End.
type CalendarEvent struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Description   string    `json:"description,omitempty"`
	HTMLLink      string    `json:"htmlLink,omitempty"`
	HangoutLink   string    `json:"hangoutLink,omitempty"`
	StartTimeZone string    `json:"startTimeZone,omitempty"`
	EndTimeZone   string    `json:"endTimeZone,omitempty"`
}
