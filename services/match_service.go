package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-arena/brackets"
	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
)

type ReportResultInput struct {
	BracketID string
	MatchID   string
	Score1    int
	Score2    int
	CallerID  string
}

// ReportOutcome is returned to the caller after a result has been stored.
type ReportOutcome struct {
	Match              models.Match `json:"match"`
	TouchedMatchIDs    []string     `json:"touched_match_ids"`
	TournamentFinished bool         `json:"tournament_finished"`
	WinnerID           string       `json:"winner_id"`
	BracketVersion     int          `json:"bracket_version"`
}

// MatchUpdate is the live event payload for a reported result.
type MatchUpdate struct {
	BracketID string          `json:"bracket_id"`
	Touched   []string        `json:"touched"`
	Bracket   *models.Bracket `json:"bracket"`
}

type TournamentFinished struct {
	TournamentID string `json:"tournament_id"`
	WinnerID     string `json:"winner_id"`
	FinalMatchID string `json:"final_match_id"`
}

type MatchService interface {
	ReportResult(ctx context.Context, input ReportResultInput) (*ReportOutcome, error)
}

type matchService struct {
	tx             repositories.Transactor
	bracketRepo    repositories.BracketRepository
	tournamentRepo repositories.TournamentRepository
	staff          StaffChecker
	rewards        RewardDispatcher
	events         EventPublisher
	metrics        *Metrics
	logger         *slog.Logger
	now            func() time.Time
}

type MatchServiceDeps struct {
	Tx             repositories.Transactor
	BracketRepo    repositories.BracketRepository
	TournamentRepo repositories.TournamentRepository
	Staff          StaffChecker
	Rewards        RewardDispatcher
	Events         EventPublisher
	Metrics        *Metrics
	Logger         *slog.Logger
}

func NewMatchService(deps MatchServiceDeps) MatchService {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		tx:             deps.Tx,
		bracketRepo:    deps.BracketRepo,
		tournamentRepo: deps.TournamentRepo,
		staff:          deps.Staff,
		rewards:        deps.Rewards,
		events:         publisherOrNoop(deps.Events),
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// ReportResult records a score, advances the winner and, for the final, closes the
// tournament and hands off to the reward dispatcher. The bracket is written once, guarded
// by its version.
func (s *matchService) ReportResult(ctx context.Context, in ReportResultInput) (*ReportOutcome, error) {
	outcome, err := s.reportResult(ctx, in)
	if err != nil {
		s.metrics.ResultsReported.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}
	s.metrics.ResultsReported.WithLabelValues("ok").Inc()
	return outcome, nil
}

func (s *matchService) reportResult(ctx context.Context, in ReportResultInput) (*ReportOutcome, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, in.BracketID)
	if err != nil {
		return nil, storeError("report result", err, ErrBracketNotFound)
	}

	ok, err := s.staff.IsStaff(ctx, in.CallerID, bracket.TournamentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	result, err := brackets.ApplyResult(bracket, in.MatchID, in.Score1, in.Score2)
	if err != nil {
		return nil, err
	}

	if result.IsFinal {
		finishedAt := s.now().UTC()
		err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.bracketRepo.UpdateMatches(ctx, exec, bracket); err != nil {
				return err
			}
			return s.tournamentRepo.MarkFinished(ctx, exec, bracket.TournamentID, result.Winner.ID, finishedAt)
		})
	} else {
		err = s.bracketRepo.UpdateMatches(ctx, nil, bracket)
	}
	if err != nil {
		return nil, storeError("report result", err, ErrBracketVersionConflict, ErrBracketNotFound, ErrTournamentNotFound)
	}

	s.logger.Info("match result recorded",
		slog.String("bracket_id", bracket.ID),
		slog.String("match_id", in.MatchID),
		slog.String("winner_id", result.Winner.ID),
		slog.Int("score1", in.Score1),
		slog.Int("score2", in.Score2),
		slog.Int("version", bracket.Version),
	)
	s.events.Publish(bracket.TournamentID, brackets.EventMatchUpdated, MatchUpdate{
		BracketID: bracket.ID,
		Touched:   result.Touched,
		Bracket:   bracket,
	})

	if result.IsFinal {
		s.metrics.TournamentsEnded.Inc()
		s.logger.Info("tournament finished",
			slog.String("tournament_id", bracket.TournamentID),
			slog.String("winner_id", result.Winner.ID),
		)
		s.events.Publish(bracket.TournamentID, brackets.EventTournamentFinished, TournamentFinished{
			TournamentID: bracket.TournamentID,
			WinnerID:     result.Winner.ID,
			FinalMatchID: in.MatchID,
		})
		if s.rewards != nil {
			s.rewards.DispatchRewards(ctx, bracket.TournamentID, in.MatchID, bracket.Matches)
		}
	}

	return &ReportOutcome{
		Match:              result.Match,
		TouchedMatchIDs:    result.Touched,
		TournamentFinished: result.IsFinal,
		WinnerID:           result.Winner.ID,
		BracketVersion:     bracket.Version,
	}, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidScore), errors.Is(err, ErrTiedScoreNotAllowed):
		return "invalid_score"
	case errors.Is(err, ErrBracketVersionConflict):
		return "conflict"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_error"
	default:
		return "rejected"
	}
}
