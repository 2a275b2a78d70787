package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/google/uuid"
)

// RewardDispatcher issues the badges configured for a finished tournament.
type RewardDispatcher interface {
	DispatchRewards(ctx context.Context, tournamentID, finalMatchID string, matches []models.Match)
}

// DispatchStats counts what one dispatch run did.
type DispatchStats struct {
	Issued  int
	Skipped int
	Failed  int
}

type RewardService struct {
	badgeRepo      repositories.BadgeRepository
	tournamentRepo repositories.TournamentRepository
	metrics        *Metrics
	logger         *slog.Logger
	now            func() time.Time
}

func NewRewardService(badgeRepo repositories.BadgeRepository, tournamentRepo repositories.TournamentRepository, metrics *Metrics, logger *slog.Logger) *RewardService {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardService{
		badgeRepo:      badgeRepo,
		tournamentRepo: tournamentRepo,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// DispatchRewards never fails the caller. Problems are logged and counted.
func (s *RewardService) DispatchRewards(ctx context.Context, tournamentID, finalMatchID string, matches []models.Match) {
	s.Dispatch(ctx, tournamentID, finalMatchID, matches)
}

func (s *RewardService) Dispatch(ctx context.Context, tournamentID, finalMatchID string, matches []models.Match) DispatchStats {
	var stats DispatchStats
	log := s.logger.With(slog.String("tournament_id", tournamentID), slog.String("final_match_id", finalMatchID))

	final := findMatch(matches, finalMatchID)
	if final == nil || final.Status != models.MatchStatusCompleted || final.Winner == nil {
		log.Error("reward dispatch skipped: final match missing or not completed")
		s.metrics.RewardErrors.Inc()
		stats.Failed++
		return stats
	}

	rules, err := s.badgeRepo.ListRulesByTournament(ctx, tournamentID)
	if err != nil {
		log.Error("reward dispatch: failed to load badge rules", slog.Any("error", err))
		s.metrics.RewardErrors.Inc()
		stats.Failed++
		return stats
	}
	if len(rules) == 0 {
		return stats
	}

	var roster []string
	rosterLoaded := false

	for _, rule := range rules {
		var recipients []string
		switch rule.Position {
		case models.PositionFirst:
			recipients = []string{final.Winner.ID}
		case models.PositionSecond:
			if loser := final.Loser(); loser != nil {
				recipients = []string{loser.ID}
			}
		case models.PositionTop3:
			log.Warn("top3 badge rule is not implemented, nothing issued", slog.String("badge_id", rule.BadgeID))
			continue
		case models.PositionAll:
			if !rosterLoaded {
				t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
				if err != nil {
					log.Error("reward dispatch: failed to load roster", slog.Any("error", err))
					s.metrics.RewardErrors.Inc()
					stats.Failed++
					continue
				}
				roster, rosterLoaded = t.Participants, true
			}
			recipients = roster
		default:
			log.Warn("unknown badge rule position", slog.String("position", string(rule.Position)))
			continue
		}

		for _, userID := range recipients {
			switch s.issue(ctx, log, userID, tournamentID, rule) {
			case issueCreated:
				stats.Issued++
			case issueSkipped:
				stats.Skipped++
			default:
				stats.Failed++
			}
		}
	}

	if stats.Issued > 0 || stats.Failed > 0 {
		log.Info("rewards dispatched",
			slog.Int("issued", stats.Issued),
			slog.Int("skipped", stats.Skipped),
			slog.Int("failed", stats.Failed),
		)
	}
	return stats
}

type issueResult int

const (
	issueFailed issueResult = iota
	issueCreated
	issueSkipped
)

func (s *RewardService) issue(ctx context.Context, log *slog.Logger, userID, tournamentID string, rule models.BadgeRule) issueResult {
	_, err := s.badgeRepo.GetAward(ctx, userID, rule.BadgeID)
	if err == nil {
		return issueSkipped
	}
	if !errors.Is(err, repositories.ErrAwardNotFound) {
		log.Error("reward dispatch: failed to check existing award",
			slog.String("user_id", userID), slog.String("badge_id", rule.BadgeID), slog.Any("error", err))
		s.metrics.RewardErrors.Inc()
		return issueFailed
	}

	award := &models.Award{
		ID:           uuid.NewString(),
		UserID:       userID,
		BadgeID:      rule.BadgeID,
		TournamentID: tournamentID,
		Position:     rule.Position,
		AssignedAt:   s.now().UTC(),
	}
	if err := s.badgeRepo.CreateAward(ctx, award); err != nil {
		if errors.Is(err, repositories.ErrAwardAlreadyIssued) {
			return issueSkipped
		}
		log.Error("reward dispatch: failed to create award",
			slog.String("user_id", userID), slog.String("badge_id", rule.BadgeID), slog.Any("error", err))
		s.metrics.RewardErrors.Inc()
		return issueFailed
	}
	s.metrics.AwardsIssued.WithLabelValues(string(rule.Position)).Inc()
	return issueCreated
}

func findMatch(matches []models.Match, id string) *models.Match {
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i]
		}
	}
	return nil
}
