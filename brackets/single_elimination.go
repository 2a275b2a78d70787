package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/tournament-arena/models"
)

// SingleEliminationGenerator builds the full match tree up front.
//
// Round 1 pairs consecutive seeds, so it has floor(n/2) matches. With an odd roster the
// last seed sits on a virtual position ceil(n/2) that is never created; its player goes
// straight to round 2. Every later round has ceil(prev/2) positions, and a position whose
// player2 feeder does not exist is a bye match that forwards its single occupant.
// Winners always move from position p to position ceil(p/2) of the next round, player1
// when p is odd and player2 when p is even, so byes never share a slot with a feeder.
type SingleEliminationGenerator struct {
	seeding SeedingPolicy
}

func NewSingleEliminationGenerator(seeding SeedingPolicy) BracketGenerator {
	if seeding == nil {
		seeding = NewRandomSeeding(nil)
	}
	return &SingleEliminationGenerator{seeding: seeding}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// NumRounds returns ceil(log2(n)) for n >= 2.
func NumRounds(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

// positionsPerRound returns, for rounds 1..numRounds, how many positions each round has
// (round 1 includes the virtual bye position).
func positionsPerRound(n, numRounds int) []int {
	positions := make([]int, numRounds+1)
	positions[1] = (n + 1) / 2
	for r := 2; r <= numRounds; r++ {
		positions[r] = (positions[r-1] + 1) / 2
	}
	return positions
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	n := len(params.Participants)
	if n < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrInsufficientParticipants, n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seeded := g.seeding.Seed(params.Participants)
	if len(seeded) != n {
		return nil, fmt.Errorf("seeding policy %q returned %d participants, expected %d", g.seeding.Name(), len(seeded), n)
	}

	numRounds := NumRounds(n)
	positions := positionsPerRound(n, numRounds)
	if positions[numRounds] != 1 {
		return nil, fmt.Errorf("internal error: round %d has %d positions, expected 1", numRounds, positions[numRounds])
	}

	matches := make([]models.Match, 0, n)
	rounds := make([]models.Round, 0, numRounds)

	firstRoundMatches := n / 2
	for i := 0; i < firstRoundMatches; i++ {
		position := i + 1
		m := models.Match{
			ID:       models.MatchID(1, position),
			Round:    1,
			Position: position,
			Player1:  slotFor(seeded[2*i], 2*i+1),
			Player2:  slotFor(seeded[2*i+1], 2*i+2),
			Status:   models.MatchStatusPending,
		}
		if numRounds > 1 {
			next := models.MatchID(2, (position+1)/2)
			m.NextMatchID = &next
		}
		matches = append(matches, m)
	}
	rounds = append(rounds, models.Round{Round: 1, MatchCount: firstRoundMatches})

	for r := 2; r <= numRounds; r++ {
		for q := 1; q <= positions[r]; q++ {
			m := models.Match{
				ID:       models.MatchID(r, q),
				Round:    r,
				Position: q,
				Status:   models.MatchStatusPending,
			}
			if 2*q > positions[r-1] {
				m.Status = models.MatchStatusBye
			}
			if r < numRounds {
				next := models.MatchID(r+1, (q+1)/2)
				m.NextMatchID = &next
			}
			matches = append(matches, m)
		}
		rounds = append(rounds, models.Round{Round: r, MatchCount: positions[r]})
	}

	if n%2 == 1 {
		byePosition := positions[1]
		byeSlot := *slotFor(seeded[n-1], n)
		if err := placeIntoNextRound(matches, 1, byePosition, models.MatchID(2, (byePosition+1)/2), byeSlot); err != nil {
			return nil, fmt.Errorf("failed to place bye for seed %d: %w", n, err)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].Position < matches[j].Position
	})

	return &models.Bracket{
		TournamentID:     params.TournamentID,
		Rounds:           rounds,
		Matches:          matches,
		ParticipantCount: n,
		Status:           models.BracketStatusActive,
	}, nil
}

func slotFor(p models.Participant, seed int) *models.SlotRef {
	return &models.SlotRef{
		ID:            p.ID,
		Name:          p.DisplayName,
		ContactHandle: p.ContactHandle,
		Seed:          seed,
	}
}
