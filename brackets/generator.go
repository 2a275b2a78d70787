package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/tournament-arena/models"
)

var (
	ErrInsufficientParticipants = errors.New("at least two participants are required to build a bracket")
	ErrMatchNotFound            = errors.New("match not found in bracket")
	ErrInvalidScore             = errors.New("scores must not be negative")
	ErrTiedScoreNotAllowed      = errors.New("tied scores are not allowed")
	ErrMatchAlreadyCompleted    = errors.New("match is already completed")
	ErrMatchNotReady            = errors.New("match does not have both players yet")
	ErrMatchNotPlayable         = errors.New("bye matches cannot be reported")
	ErrSlotConflict             = errors.New("destination slot is already occupied")
	ErrBracketFinished          = errors.New("bracket is already finished")
)

type GenerateBracketParams struct {
	TournamentID string
	Participants []models.Participant
}

// BracketGenerator produces the round/match structure of a bracket. The result is not
// persisted and carries no id; callers own storage.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error)

	GetName() string
}
