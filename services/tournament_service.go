package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit        = 50
	maxListLimit            = 200
	defaultLeaderboardLimit = 20
)

type CreateTournamentInput struct {
	Name        string                  `json:"name"`
	Description *string                 `json:"description,omitempty"`
	Status      models.TournamentStatus `json:"status,omitempty"`
	Staff       []string                `json:"staff,omitempty"`
}

type ListTournamentsInput struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentService interface {
	Create(ctx context.Context, callerID string, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error)
	Join(ctx context.Context, tournamentID, userID string) (*models.Tournament, error)
	RemoveParticipant(ctx context.Context, tournamentID, userID, callerID string) (*models.Tournament, error)
	UpdateStaff(ctx context.Context, tournamentID string, staff []string, callerID string) (*models.Tournament, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	badgeRepo      repositories.BadgeRepository
	staff          StaffChecker
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	badgeRepo repositories.BadgeRepository,
	staff StaffChecker,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		badgeRepo:      badgeRepo,
		staff:          staff,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, callerID string, input CreateTournamentInput) (*models.Tournament, error) {
	if callerID == "" {
		return nil, ErrAuthenticationFailed
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	status := input.Status
	if status == "" {
		status = models.StatusRegistration
	}
	if status != models.StatusSoon && status != models.StatusRegistration {
		return nil, fmt.Errorf("%w: a new tournament starts as %q or %q", ErrValidationFailed, models.StatusSoon, models.StatusRegistration)
	}

	t := &models.Tournament{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  input.Description,
		Status:       status,
		Participants: []string{},
		Staff:        dedupe(input.Staff),
		CreatedBy:    callerID,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, storeError("create tournament", err, ErrTournamentNameConflict)
	}
	s.logger.Info("tournament created", slog.String("tournament_id", t.ID), slog.String("created_by", callerID))
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get tournament", err, ErrTournamentNotFound)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, *input.Status)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status: input.Status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, storeError("list tournaments", err)
	}
	return tournaments, nil
}

func (s *tournamentService) Join(ctx context.Context, tournamentID, userID string) (*models.Tournament, error) {
	if userID == "" {
		return nil, ErrAuthenticationFailed
	}
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}
	if t.BracketID != nil {
		return nil, ErrRosterLocked
	}
	if t.HasParticipant(userID) {
		return t, nil
	}
	if err := s.tournamentRepo.AddParticipant(ctx, tournamentID, userID); err != nil {
		return nil, storeError("join tournament", err, ErrTournamentNotFound, ErrRosterLocked)
	}
	return s.GetByID(ctx, tournamentID)
}

func (s *tournamentService) RemoveParticipant(ctx context.Context, tournamentID, userID, callerID string) (*models.Tournament, error) {
	if callerID != userID {
		if err := s.requireStaff(ctx, callerID, tournamentID); err != nil {
			return nil, err
		}
	}
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.BracketID != nil {
		return nil, ErrRosterLocked
	}
	if err := s.tournamentRepo.RemoveParticipant(ctx, tournamentID, userID); err != nil {
		return nil, storeError("leave tournament", err, ErrTournamentNotFound, ErrRosterLocked)
	}
	return s.GetByID(ctx, tournamentID)
}

func (s *tournamentService) UpdateStaff(ctx context.Context, tournamentID string, staff []string, callerID string) (*models.Tournament, error) {
	if err := s.requireStaff(ctx, callerID, tournamentID); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateStaff(ctx, tournamentID, dedupe(staff)); err != nil {
		return nil, storeError("update staff", err, ErrTournamentNotFound)
	}
	return s.GetByID(ctx, tournamentID)
}

func (s *tournamentService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var (
		user   *models.User
		won    int
		awards []models.Award
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.userRepo.GetByID(gctx, userID)
		if err != nil {
			return storeError("get profile", err, ErrUserNotFound)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		n, err := s.userRepo.CountTournamentsWon(gctx, userID)
		if err != nil {
			return storeError("get profile", err)
		}
		won = n
		return nil
	})
	g.Go(func() error {
		a, err := s.badgeRepo.ListAwardsByUser(gctx, userID)
		if err != nil {
			return storeError("get profile", err)
		}
		awards = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if awards == nil {
		awards = []models.Award{}
	}
	return &models.UserProfile{
		ID:             user.ID,
		DisplayName:    user.DisplayName,
		ContactHandle:  user.ContactHandle,
		TournamentsWon: won,
		Awards:         awards,
	}, nil
}

func (s *tournamentService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	entries, err := s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, storeError("leaderboard", err)
	}
	return entries, nil
}

func (s *tournamentService) requireStaff(ctx context.Context, callerID, tournamentID string) error {
	ok, err := s.staff.IsStaff(ctx, callerID, tournamentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
