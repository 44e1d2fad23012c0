package entities

import "time"

// PhoneNumber is an originating number available for outbound calls.
type PhoneNumber struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Name      string    `json:"name,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
