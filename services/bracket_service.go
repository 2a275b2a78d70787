package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-arena/brackets"
	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BuildResult reports the bracket a build call resolved to. Created is false when the
// tournament already had one.
type BuildResult struct {
	BracketID string `json:"bracket_id"`
	Created   bool   `json:"created"`
}

// BracketView is a tournament together with its bracket, if one has been built.
type BracketView struct {
	Tournament *models.Tournament `json:"tournament"`
	Bracket    *models.Bracket    `json:"bracket"`
}

type BracketService interface {
	BuildBracket(ctx context.Context, tournamentID, callerID string) (*BuildResult, error)
	GetBracket(ctx context.Context, bracketID string) (*models.Bracket, error)
	GetBracketView(ctx context.Context, tournamentID string) (*BracketView, error)
}

type bracketService struct {
	tx             repositories.Transactor
	bracketRepo    repositories.BracketRepository
	tournamentRepo repositories.TournamentRepository
	roster         RosterResolver
	generator      brackets.BracketGenerator
	staff          StaffChecker
	events         EventPublisher
	metrics        *Metrics
	logger         *slog.Logger
}

type BracketServiceDeps struct {
	Tx             repositories.Transactor
	BracketRepo    repositories.BracketRepository
	TournamentRepo repositories.TournamentRepository
	Roster         RosterResolver
	Generator      brackets.BracketGenerator
	Staff          StaffChecker
	Events         EventPublisher
	Metrics        *Metrics
	Logger         *slog.Logger
}

func NewBracketService(deps BracketServiceDeps) BracketService {
	generator := deps.Generator
	if generator == nil {
		generator = brackets.NewSingleEliminationGenerator(nil)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &bracketService{
		tx:             deps.Tx,
		bracketRepo:    deps.BracketRepo,
		tournamentRepo: deps.TournamentRepo,
		roster:         deps.Roster,
		generator:      generator,
		staff:          deps.Staff,
		events:         publisherOrNoop(deps.Events),
		metrics:        metrics,
		logger:         deps.Logger,
	}
}

// BuildBracket generates and stores the bracket of a tournament. A tournament keeps the
// first bracket ever built for it; later calls return that bracket's id.
func (s *bracketService) BuildBracket(ctx context.Context, tournamentID, callerID string) (*BuildResult, error) {
	ok, err := s.staff.IsStaff(ctx, callerID, tournamentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, storeError("build bracket", err, ErrTournamentNotFound)
	}
	if tournament.BracketID != nil && *tournament.BracketID != "" {
		return &BuildResult{BracketID: *tournament.BracketID}, nil
	}
	if existing, err := s.bracketRepo.GetByTournament(ctx, tournamentID); err == nil {
		return &BuildResult{BracketID: existing.ID}, nil
	} else if !errors.Is(err, ErrBracketNotFound) {
		return nil, storeError("build bracket", err)
	}
	if tournament.Status == models.StatusFinished || tournament.Status == models.StatusCanceled {
		return nil, ErrTournamentClosed
	}

	participants, err := s.roster.ResolveIDs(ctx, tournament.Participants)
	if err != nil {
		return nil, err
	}

	bracket, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		Participants: participants,
	})
	if err != nil {
		return nil, err
	}
	bracket.ID = uuid.NewString()
	bracket.CreatedBy = callerID

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.bracketRepo.Create(ctx, exec, bracket); err != nil {
			return err
		}
		return s.tournamentRepo.AttachBracket(ctx, exec, tournamentID, bracket.ID, models.StatusActive)
	})
	if errors.Is(err, ErrBracketAlreadyExists) || errors.Is(err, repositories.ErrTournamentHasBracket) {
		// Lost the race against a concurrent build; the winner's bracket stands.
		existing, getErr := s.bracketRepo.GetByTournament(ctx, tournamentID)
		if getErr != nil {
			return nil, storeError("build bracket", getErr)
		}
		return &BuildResult{BracketID: existing.ID}, nil
	}
	if err != nil {
		return nil, storeError("build bracket", err, ErrTournamentNotFound)
	}

	s.metrics.BracketsBuilt.Inc()
	s.events.Publish(tournamentID, brackets.EventBracketUpdated, bracket)
	if s.logger != nil {
		s.logger.Info("bracket built",
			slog.String("tournament_id", tournamentID),
			slog.String("bracket_id", bracket.ID),
			slog.Int("participants", bracket.ParticipantCount),
			slog.Int("rounds", len(bracket.Rounds)),
			slog.String("generator", s.generator.GetName()),
		)
	}

	return &BuildResult{BracketID: bracket.ID, Created: true}, nil
}

func (s *bracketService) GetBracket(ctx context.Context, bracketID string) (*models.Bracket, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		return nil, storeError("get bracket", err, ErrBracketNotFound)
	}
	return bracket, nil
}

func (s *bracketService) GetBracketView(ctx context.Context, tournamentID string) (*BracketView, error) {
	view := &BracketView{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gctx, tournamentID)
		if err != nil {
			return storeError("get bracket view", err, ErrTournamentNotFound)
		}
		view.Tournament = t
		return nil
	})
	g.Go(func() error {
		b, err := s.bracketRepo.GetByTournament(gctx, tournamentID)
		if errors.Is(err, ErrBracketNotFound) {
			return nil
		}
		if err != nil {
			return storeError("get bracket view", err)
		}
		view.Bracket = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func finalMatchID(b *models.Bracket) (string, error) {
	for i := range b.Matches {
		if b.Matches[i].NextMatchID == nil {
			return b.Matches[i].ID, nil
		}
	}
	return "", fmt.Errorf("bracket %s has no final match", b.ID)
}
