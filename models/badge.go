package models

import "time"

// BadgePosition selects which finishers of a tournament receive a badge.
type BadgePosition string

const (
	PositionFirst  BadgePosition = "first"
	PositionSecond BadgePosition = "second"
	PositionTop3   BadgePosition = "top3"
	PositionAll    BadgePosition = "all"
)

func (p BadgePosition) IsValid() bool {
	switch p {
	case PositionFirst, PositionSecond, PositionTop3, PositionAll:
		return true
	}
	return false
}

type Badge struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	ImageKey    *string   `json:"-" db:"image_key"`
	ImageURL    *string   `json:"image_url,omitempty" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type BadgeRule struct {
	ID           string        `json:"id" db:"id"`
	TournamentID string        `json:"tournament_id" db:"tournament_id"`
	BadgeID      string        `json:"badge_id" db:"badge_id"`
	Position     BadgePosition `json:"position" db:"position"`
}

type Award struct {
	ID           string        `json:"id" db:"id"`
	UserID       string        `json:"user_id" db:"user_id"`
	BadgeID      string        `json:"badge_id" db:"badge_id"`
	TournamentID string        `json:"tournament_id" db:"tournament_id"`
	Position     BadgePosition `json:"position" db:"position"`
	AssignedAt   time.Time     `json:"assigned_at" db:"assigned_at"`
}
