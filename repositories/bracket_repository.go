package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-arena/models"
)

var (
	ErrBracketNotFound        = errors.New("bracket not found")
	ErrBracketExists          = errors.New("bracket already exists for tournament")
	ErrBracketVersionConflict = errors.New("bracket was modified concurrently")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, id string) (*models.Bracket, error)
	GetByTournament(ctx context.Context, tournamentID string) (*models.Bracket, error)
	// UpdateMatches replaces the whole matches array if the stored version still equals
	// bracket.Version, then bumps bracket.Version.
	UpdateMatches(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

const bracketColumns = `id, tournament_id, rounds, matches, participant_count, status, created_by, version, created_at, updated_at`

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, b *models.Bracket) error {
	rounds, err := json.Marshal(b.Rounds)
	if err != nil {
		return fmt.Errorf("failed to encode bracket rounds: %w", err)
	}
	matches, err := json.Marshal(b.Matches)
	if err != nil {
		return fmt.Errorf("failed to encode bracket matches: %w", err)
	}

	query := `
		INSERT INTO brackets (id, tournament_id, rounds, matches, participant_count, status, created_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		RETURNING version, created_at, updated_at`

	err = pickExecutor(r.db, exec).QueryRowContext(ctx, query,
		b.ID, b.TournamentID, rounds, matches, b.ParticipantCount, b.Status, b.CreatedBy,
	).Scan(&b.Version, &b.CreatedAt, &b.UpdatedAt)
	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id string) (*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresBracketRepository) GetByTournament(ctx context.Context, tournamentID string) (*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE tournament_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, tournamentID))
}

func (r *postgresBracketRepository) UpdateMatches(ctx context.Context, exec SQLExecutor, b *models.Bracket) error {
	matches, err := json.Marshal(b.Matches)
	if err != nil {
		return fmt.Errorf("failed to encode bracket matches: %w", err)
	}

	query := `
		UPDATE brackets
		SET matches = $1, status = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5
		RETURNING version, updated_at`

	err = pickExecutor(r.db, exec).QueryRowContext(ctx, query,
		matches, b.Status, time.Now().UTC(), b.ID, b.Version,
	).Scan(&b.Version, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, b.ID); errors.Is(getErr, ErrBracketNotFound) {
			return ErrBracketNotFound
		}
		return ErrBracketVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update matches of bracket %s: %w", b.ID, err)
	}
	return nil
}

func (r *postgresBracketRepository) scanOne(row *sql.Row) (*models.Bracket, error) {
	var (
		b       models.Bracket
		rounds  []byte
		matches []byte
	)
	err := row.Scan(&b.ID, &b.TournamentID, &rounds, &matches, &b.ParticipantCount, &b.Status,
		&b.CreatedBy, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket: %w", err)
	}
	if err := json.Unmarshal(rounds, &b.Rounds); err != nil {
		return nil, fmt.Errorf("failed to decode rounds of bracket %s: %w", b.ID, err)
	}
	if err := json.Unmarshal(matches, &b.Matches); err != nil {
		return nil, fmt.Errorf("failed to decode matches of bracket %s: %w", b.ID, err)
	}
	return &b, nil
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
		if pqErr.Constraint == "brackets_tournament_id_key" {
			return ErrBracketExists
		}
	}
	return err
}
