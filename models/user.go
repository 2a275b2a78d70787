package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	ContactHandle *string   `json:"contact_handle,omitempty" db:"contact_handle"`
	Role          UserRole  `json:"role" db:"role"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// UserProfile is the public profile page payload.
type UserProfile struct {
	ID             string  `json:"id"`
	DisplayName    string  `json:"display_name"`
	ContactHandle  *string `json:"contact_handle,omitempty"`
	TournamentsWon int     `json:"tournaments_won"`
	Awards         []Award `json:"awards"`
}

type LeaderboardEntry struct {
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	TournamentsWon int    `json:"tournaments_won"`
	AwardCount     int    `json:"award_count"`
}
