package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/go-co-op/gocron/v2"
)

// RewardReconciler periodically re-dispatches rewards for recently finished tournaments.
// Dispatch is idempotent, so a pass only fills awards a failed run left out.
type RewardReconciler struct {
	tournamentRepo repositories.TournamentRepository
	bracketRepo    repositories.BracketRepository
	rewards        *RewardService
	interval       time.Duration
	window         time.Duration
	metrics        *Metrics
	logger         *slog.Logger
	now            func() time.Time

	scheduler gocron.Scheduler
}

func NewRewardReconciler(
	tournamentRepo repositories.TournamentRepository,
	bracketRepo repositories.BracketRepository,
	rewards *RewardService,
	interval, window time.Duration,
	metrics *Metrics,
	logger *slog.Logger,
) *RewardReconciler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardReconciler{
		tournamentRepo: tournamentRepo,
		bracketRepo:    bracketRepo,
		rewards:        rewards,
		interval:       interval,
		window:         window,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// Start schedules the job. The first pass runs immediately.
func (r *RewardReconciler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create reward scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			if _, err := r.ReconcileOnce(ctx); err != nil {
				r.logger.Error("reward reconciliation failed", slog.Any("error", err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule reward reconciliation: %w", err)
	}

	sched.Start()
	r.scheduler = sched
	r.logger.Info("reward reconciler started",
		slog.Duration("interval", r.interval),
		slog.Duration("window", r.window),
	)
	return nil
}

func (r *RewardReconciler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}

// ReconcileOnce runs a single pass and returns the combined dispatch stats.
func (r *RewardReconciler) ReconcileOnce(ctx context.Context) (DispatchStats, error) {
	var total DispatchStats

	since := r.now().Add(-r.window)
	tournaments, err := r.tournamentRepo.ListFinishedSince(ctx, since)
	if err != nil {
		r.metrics.ReconcilerRuns.WithLabelValues("error").Inc()
		return total, storeError("reconcile rewards", err)
	}

	for _, t := range tournaments {
		if ctx.Err() != nil {
			r.metrics.ReconcilerRuns.WithLabelValues("canceled").Inc()
			return total, ctx.Err()
		}
		bracket, err := r.bracketRepo.GetByTournament(ctx, t.ID)
		if err != nil {
			if !errors.Is(err, repositories.ErrBracketNotFound) {
				r.logger.Error("reconcile: failed to load bracket", slog.String("tournament_id", t.ID), slog.Any("error", err))
				total.Failed++
			}
			continue
		}
		finalID, err := finalMatchID(bracket)
		if err != nil {
			r.logger.Error("reconcile: malformed bracket", slog.String("tournament_id", t.ID), slog.Any("error", err))
			total.Failed++
			continue
		}

		stats := r.rewards.Dispatch(ctx, t.ID, finalID, bracket.Matches)
		total.Issued += stats.Issued
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed
	}

	r.metrics.ReconcilerRuns.WithLabelValues("ok").Inc()
	if total.Issued > 0 || total.Failed > 0 {
		r.logger.Info("reward reconciliation pass",
			slog.Int("tournaments", len(tournaments)),
			slog.Int("issued", total.Issued),
			slog.Int("failed", total.Failed),
		)
	}
	return total, nil
}
