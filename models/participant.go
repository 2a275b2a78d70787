package models

// DefaultParticipantName is shown for roster members without a profile.
const DefaultParticipantName = "Participant"

// Participant is a roster entry resolved to its display data.
type Participant struct {
	ID            string  `json:"id"`
	DisplayName   string  `json:"display_name"`
	ContactHandle *string `json:"contact_handle,omitempty"`
}
