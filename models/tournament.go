package models

import "time"

// TournamentStatus is the tournament lifecycle label ("estado").
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusFinished     TournamentStatus = "finished"
	StatusCanceled     TournamentStatus = "canceled"
)

func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusSoon, StatusRegistration, StatusActive, StatusFinished, StatusCanceled:
		return true
	}
	return false
}

// Tournament is the owning record of a bracket. Participants and Staff hold user ids.
type Tournament struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Description  *string          `json:"description,omitempty" db:"description"`
	Status       TournamentStatus `json:"status" db:"status"`
	Participants []string         `json:"participants" db:"participants"`
	Staff        []string         `json:"staff" db:"staff"`
	CreatedBy    string           `json:"created_by" db:"created_by"`
	BracketID    *string          `json:"bracket_id,omitempty" db:"bracket_id"`
	WinnerID     *string          `json:"winner_id,omitempty" db:"winner_id"`
	FinishedAt   *time.Time       `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

func (t *Tournament) HasParticipant(userID string) bool {
	for _, id := range t.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (t *Tournament) HasStaff(userID string) bool {
	for _, id := range t.Staff {
		if id == userID {
			return true
		}
	}
	return false
}
