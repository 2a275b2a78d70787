package brackets

import (
	"math/rand/v2"
	"sync"

	"github.com/Dosada05/tournament-arena/models"
)

// SeedingPolicy orders the roster before the tree is built. Index i of the result
// receives seed i+1.
type SeedingPolicy interface {
	Seed(participants []models.Participant) []models.Participant
	Name() string
}

// RandomSeeding is a uniform Fisher-Yates shuffle.
type RandomSeeding struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSeeding uses rng when given (tests pass a seeded source) and the global
// generator otherwise.
func NewRandomSeeding(rng *rand.Rand) *RandomSeeding {
	return &RandomSeeding{rng: rng}
}

func (s *RandomSeeding) Name() string {
	return "random"
}

func (s *RandomSeeding) Seed(participants []models.Participant) []models.Participant {
	out := make([]models.Participant, len(participants))
	copy(out, participants)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		var j int
		if s.rng != nil {
			j = s.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FixedSeeding keeps the given order. Used for manual seeding.
type FixedSeeding struct{}

func (FixedSeeding) Name() string {
	return "fixed"
}

func (FixedSeeding) Seed(participants []models.Participant) []models.Participant {
	out := make([]models.Participant, len(participants))
	copy(out, participants)
	return out
}
