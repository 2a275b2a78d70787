package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	rosterLookupBatch       = 100
	rosterLookupConcurrency = 4
)

// RosterResolver turns roster membership ids into display-ready participants.
type RosterResolver interface {
	Resolve(ctx context.Context, tournamentID string) ([]models.Participant, error)
	ResolveIDs(ctx context.Context, ids []string) ([]models.Participant, error)
}

type RosterService struct {
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	logger         *slog.Logger
}

func NewRosterService(tournamentRepo repositories.TournamentRepository, userRepo repositories.UserRepository, logger *slog.Logger) *RosterService {
	return &RosterService{
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

func (s *RosterService) Resolve(ctx context.Context, tournamentID string) ([]models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, storeError("resolve roster", err, ErrTournamentNotFound)
	}
	return s.ResolveIDs(ctx, tournament.Participants)
}

// ResolveIDs keeps the order of ids. Members without a profile get the default label.
func (s *RosterService) ResolveIDs(ctx context.Context, ids []string) ([]models.Participant, error) {
	profiles := make(map[string]*models.User, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rosterLookupConcurrency)
	for start := 0; start < len(ids); start += rosterLookupBatch {
		end := start + rosterLookupBatch
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		g.Go(func() error {
			users, err := s.userRepo.GetByIDs(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			for id, u := range users {
				profiles[id] = u
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError("resolve roster profiles", err)
	}

	participants := make([]models.Participant, 0, len(ids))
	missing := 0
	for _, id := range ids {
		p := models.Participant{ID: id, DisplayName: models.DefaultParticipantName}
		if u, ok := profiles[id]; ok {
			if u.DisplayName != "" {
				p.DisplayName = u.DisplayName
			}
			p.ContactHandle = u.ContactHandle
		} else {
			missing++
		}
		participants = append(participants, p)
	}
	if missing > 0 && s.logger != nil {
		s.logger.Debug("roster members without profile", slog.Int("missing", missing), slog.Int("total", len(ids)))
	}
	return participants, nil
}
