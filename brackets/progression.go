package brackets

import (
	"fmt"

	"github.com/Dosada05/tournament-arena/models"
)

// ResultOutcome describes what a reported result changed.
type ResultOutcome struct {
	Match   models.Match
	Winner  models.SlotRef
	Loser   models.SlotRef
	IsFinal bool
	// Touched lists ids of every match mutated, the reported one first.
	Touched []string
}

// ValidateScores checks the score pair independently of any bracket state.
func ValidateScores(score1, score2 int) error {
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidScore, score1, score2)
	}
	if score1 == score2 {
		return fmt.Errorf("%w: got %d-%d", ErrTiedScoreNotAllowed, score1, score2)
	}
	return nil
}

// ApplyResult records a result on bracket b and advances the winner. On error b is left
// untouched.
func ApplyResult(b *models.Bracket, matchID string, score1, score2 int) (*ResultOutcome, error) {
	idx := b.FindMatch(matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if err := ValidateScores(score1, score2); err != nil {
		return nil, err
	}
	if b.Status == models.BracketStatusFinished {
		return nil, ErrBracketFinished
	}

	current := b.Matches[idx]
	switch {
	case current.Status == models.MatchStatusBye:
		return nil, fmt.Errorf("%w: %s", ErrMatchNotPlayable, matchID)
	case current.Status == models.MatchStatusCompleted:
		return nil, fmt.Errorf("%w: %s", ErrMatchAlreadyCompleted, matchID)
	case current.Player1 == nil || current.Player2 == nil:
		return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, matchID)
	}

	matches := make([]models.Match, len(b.Matches))
	copy(matches, b.Matches)
	m := &matches[idx]

	winner, loser := *m.Player1, *m.Player2
	if score2 > score1 {
		winner, loser = *m.Player2, *m.Player1
	}
	m.Scores = &models.MatchScores{Player1: score1, Player2: score2}
	m.Winner = &winner
	m.Status = models.MatchStatusCompleted

	outcome := &ResultOutcome{
		Winner:  winner,
		Loser:   loser,
		IsFinal: m.IsFinal(),
		Touched: []string{m.ID},
	}

	if !outcome.IsFinal {
		touched, err := advance(matches, m.Round, m.Position, *m.NextMatchID, winner)
		if err != nil {
			return nil, err
		}
		outcome.Touched = append(outcome.Touched, touched...)
	}

	b.Matches = matches
	if outcome.IsFinal {
		b.Status = models.BracketStatusFinished
	}
	outcome.Match = b.Matches[idx]
	return outcome, nil
}

// placeIntoNextRound is advance without the touched list; used by the generator.
func placeIntoNextRound(matches []models.Match, fromRound, fromPosition int, nextID string, ref models.SlotRef) error {
	_, err := advance(matches, fromRound, fromPosition, nextID, ref)
	return err
}

// advance puts ref into match nextID, player1 for odd source positions and player2 for
// even ones. Bye matches forward their occupant immediately.
func advance(matches []models.Match, fromRound, fromPosition int, nextID string, ref models.SlotRef) ([]string, error) {
	var touched []string
	for {
		idx := -1
		for i := range matches {
			if matches[i].ID == nextID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: next match %s referenced by %s", ErrMatchNotFound, nextID, models.MatchID(fromRound, fromPosition))
		}
		next := &matches[idx]

		slot := &next.Player2
		if fromPosition%2 == 1 {
			slot = &next.Player1
		}
		if *slot != nil {
			return nil, fmt.Errorf("%w: match %s already holds %s, cannot place %s from %s",
				ErrSlotConflict, next.ID, (*slot).ID, ref.ID, models.MatchID(fromRound, fromPosition))
		}
		placed := ref
		*slot = &placed
		touched = append(touched, next.ID)

		if next.Status != models.MatchStatusBye {
			return touched, nil
		}
		forwarded := ref
		next.Winner = &forwarded
		if next.NextMatchID == nil {
			return touched, nil
		}
		fromRound, fromPosition, nextID = next.Round, next.Position, *next.NextMatchID
	}
}
