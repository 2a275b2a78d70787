package models

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
	// MatchStatusBye marks a round >= 2 match that only ever receives one entrant.
	MatchStatusBye MatchStatus = "bye"
)

type BracketStatus string

const (
	BracketStatusActive   BracketStatus = "active"
	BracketStatusFinished BracketStatus = "finished"
)

// SlotRef is a participant placed into one side of a match.
type SlotRef struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ContactHandle *string `json:"contact_handle,omitempty"`
	Seed          int     `json:"seed"`
}

type MatchScores struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

type Match struct {
	ID          string       `json:"id"`
	Round       int          `json:"round"`
	Position    int          `json:"position"`
	Player1     *SlotRef     `json:"player1"`
	Player2     *SlotRef     `json:"player2"`
	Winner      *SlotRef     `json:"winner"`
	Scores      *MatchScores `json:"scores,omitempty"`
	Status      MatchStatus  `json:"status"`
	NextMatchID *string      `json:"next_match_id"`
}

// MatchID formats the "{round}-{position}" identifier used for every bracket match.
func MatchID(round, position int) string {
	return fmt.Sprintf("%d-%d", round, position)
}

func (m *Match) IsFinal() bool {
	return m.NextMatchID == nil
}

// Loser returns the side that did not win a completed match.
func (m *Match) Loser() *SlotRef {
	if m.Winner == nil || m.Player1 == nil || m.Player2 == nil {
		return nil
	}
	if m.Player1.ID == m.Winner.ID {
		return m.Player2
	}
	return m.Player1
}

type Round struct {
	Round      int `json:"round"`
	MatchCount int `json:"match_count"`
}

// Bracket is persisted as one record; Version guards the matches read-modify-write.
type Bracket struct {
	ID               string        `json:"id" db:"id"`
	TournamentID     string        `json:"tournament_id" db:"tournament_id"`
	Rounds           []Round       `json:"rounds" db:"rounds"`
	Matches          []Match       `json:"matches" db:"matches"`
	ParticipantCount int           `json:"participant_count" db:"participant_count"`
	Status           BracketStatus `json:"status" db:"status"`
	CreatedBy        string        `json:"created_by" db:"created_by"`
	Version          int           `json:"version" db:"version"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// FindMatch returns the index of the match with the given id or -1.
func (b *Bracket) FindMatch(matchID string) int {
	for i := range b.Matches {
		if b.Matches[i].ID == matchID {
			return i
		}
	}
	return -1
}

func (b *Bracket) NumRounds() int {
	return len(b.Rounds)
}
