package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-arena/models"
)

var (
	ErrBadgeNotFound      = errors.New("badge not found")
	ErrBadgeSlugConflict  = errors.New("badge with this name already exists")
	ErrBadgeRuleConflict  = errors.New("badge rule already exists for this tournament")
	ErrBadgeRuleInvalid   = errors.New("badge rule references an unknown tournament or badge")
	ErrAwardNotFound      = errors.New("award not found")
	ErrAwardAlreadyIssued = errors.New("badge already awarded to user")
)

type BadgeRepository interface {
	Create(ctx context.Context, badge *models.Badge) error
	GetByID(ctx context.Context, id string) (*models.Badge, error)
	List(ctx context.Context) ([]models.Badge, error)
	UpdateImageKey(ctx context.Context, id string, imageKey *string) error

	CreateRule(ctx context.Context, rule *models.BadgeRule) error
	ListRulesByTournament(ctx context.Context, tournamentID string) ([]models.BadgeRule, error)

	GetAward(ctx context.Context, userID, badgeID string) (*models.Award, error)
	CreateAward(ctx context.Context, award *models.Award) error
	ListAwardsByUser(ctx context.Context, userID string) ([]models.Award, error)
}

type postgresBadgeRepository struct {
	db *sql.DB
}

func NewPostgresBadgeRepository(db *sql.DB) BadgeRepository {
	return &postgresBadgeRepository{db: db}
}

func (r *postgresBadgeRepository) Create(ctx context.Context, b *models.Badge) error {
	query := `
		INSERT INTO badges (id, name, slug, description, image_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, b.ID, b.Name, b.Slug, b.Description, b.ImageKey).Scan(&b.CreatedAt)
	return r.handleBadgeError(err)
}

func (r *postgresBadgeRepository) GetByID(ctx context.Context, id string) (*models.Badge, error) {
	query := `SELECT id, name, slug, description, image_key, created_at FROM badges WHERE id = $1`
	b := &models.Badge{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.ImageKey, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadgeNotFound
		}
		return nil, fmt.Errorf("failed to get badge %s: %w", id, err)
	}
	return b, nil
}

func (r *postgresBadgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	query := `SELECT id, name, slug, description, image_key, created_at FROM badges ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	badges := make([]models.Badge, 0)
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.ImageKey, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge row: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (r *postgresBadgeRepository) UpdateImageKey(ctx context.Context, id string, imageKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE badges SET image_key = $1 WHERE id = $2`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update badge image key: %w", err)
	}
	return checkAffectedRows(result, ErrBadgeNotFound)
}

func (r *postgresBadgeRepository) CreateRule(ctx context.Context, rule *models.BadgeRule) error {
	query := `INSERT INTO badge_rules (id, tournament_id, badge_id, position) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, rule.ID, rule.TournamentID, rule.BadgeID, rule.Position)
	return r.handleBadgeError(err)
}

func (r *postgresBadgeRepository) ListRulesByTournament(ctx context.Context, tournamentID string) ([]models.BadgeRule, error) {
	query := `
		SELECT id, tournament_id, badge_id, position
		FROM badge_rules
		WHERE tournament_id = $1
		ORDER BY position ASC, badge_id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge rules for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	rules := make([]models.BadgeRule, 0)
	for rows.Next() {
		var rule models.BadgeRule
		if err := rows.Scan(&rule.ID, &rule.TournamentID, &rule.BadgeID, &rule.Position); err != nil {
			return nil, fmt.Errorf("failed to scan badge rule row: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *postgresBadgeRepository) GetAward(ctx context.Context, userID, badgeID string) (*models.Award, error) {
	query := `
		SELECT id, user_id, badge_id, tournament_id, position, assigned_at
		FROM awards
		WHERE user_id = $1 AND badge_id = $2`
	a := &models.Award{}
	err := r.db.QueryRowContext(ctx, query, userID, badgeID).Scan(&a.ID, &a.UserID, &a.BadgeID, &a.TournamentID, &a.Position, &a.AssignedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAwardNotFound
		}
		return nil, fmt.Errorf("failed to get award (user %s, badge %s): %w", userID, badgeID, err)
	}
	return a, nil
}

// CreateAward relies on the (user_id, badge_id) unique key, so a racing duplicate
// surfaces as ErrAwardAlreadyIssued rather than a second row.
func (r *postgresBadgeRepository) CreateAward(ctx context.Context, a *models.Award) error {
	query := `
		INSERT INTO awards (id, user_id, badge_id, tournament_id, position, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.UserID, a.BadgeID, a.TournamentID, a.Position, a.AssignedAt)
	return r.handleBadgeError(err)
}

func (r *postgresBadgeRepository) ListAwardsByUser(ctx context.Context, userID string) ([]models.Award, error) {
	query := `
		SELECT id, user_id, badge_id, tournament_id, position, assigned_at
		FROM awards
		WHERE user_id = $1
		ORDER BY assigned_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query awards for user %s: %w", userID, err)
	}
	defer rows.Close()

	awards := make([]models.Award, 0)
	for rows.Next() {
		var a models.Award
		if err := rows.Scan(&a.ID, &a.UserID, &a.BadgeID, &a.TournamentID, &a.Position, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan award row: %w", err)
		}
		awards = append(awards, a)
	}
	return awards, rows.Err()
}

func (r *postgresBadgeRepository) handleBadgeError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			switch pqErr.Constraint {
			case "badges_slug_key":
				return ErrBadgeSlugConflict
			case "badge_rules_tournament_id_badge_id_position_key":
				return ErrBadgeRuleConflict
			case "awards_user_id_badge_id_key":
				return ErrAwardAlreadyIssued
			}
		case pqForeignKeyViolation:
			return ErrBadgeRuleInvalid
		}
	}
	return err
}
