package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this creator")
	ErrTournamentHasBracket   = errors.New("tournament already references a bracket")
	ErrRosterLocked           = errors.New("roster cannot change once the bracket exists")
)

type ListTournamentsFilter struct {
	Status    *models.TournamentStatus
	CreatedBy *string
	Limit     int
	Offset    int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	// AttachBracket sets bracket_id once and moves the tournament to status.
	AttachBracket(ctx context.Context, exec SQLExecutor, id, bracketID string, status models.TournamentStatus) error
	MarkFinished(ctx context.Context, exec SQLExecutor, id, winnerID string, finishedAt time.Time) error
	// AddParticipant and RemoveParticipant return ErrRosterLocked once a bracket is attached.
	// AddParticipant also requires open registration.
	AddParticipant(ctx context.Context, id, userID string) error
	RemoveParticipant(ctx context.Context, id, userID string) error
	UpdateStaff(ctx context.Context, id string, staff []string) error
	UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) error
	ListFinishedSince(ctx context.Context, since time.Time) ([]models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, description, status, participants, staff, created_by,
	bracket_id, winner_id, finished_at, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (id, name, description, status, participants, staff, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Description, t.Status, pq.Array(t.Participants), pq.Array(t.Staff), t.CreatedBy,
	).Scan(&t.CreatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.CreatedBy != nil {
		query += fmt.Sprintf(" AND created_by = $%d", argID)
		args = append(args, *filter.CreatedBy)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	return r.queryTournaments(ctx, query, args...)
}

func (r *postgresTournamentRepository) AttachBracket(ctx context.Context, exec SQLExecutor, id, bracketID string, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET bracket_id = $1, status = $2 WHERE id = $3 AND bracket_id IS NULL`
	result, err := pickExecutor(r.db, exec).ExecContext(ctx, query, bracketID, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	if err := checkAffectedRows(result, ErrTournamentHasBracket); err != nil {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) MarkFinished(ctx context.Context, exec SQLExecutor, id, winnerID string, finishedAt time.Time) error {
	query := `UPDATE tournaments SET status = $1, winner_id = $2, finished_at = $3 WHERE id = $4`
	result, err := pickExecutor(r.db, exec).ExecContext(ctx, query, models.StatusFinished, winnerID, finishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark tournament %s finished: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddParticipant(ctx context.Context, id, userID string) error {
	query := `
		UPDATE tournaments
		SET participants = CASE WHEN $1 = ANY(participants) THEN participants ELSE array_append(participants, $1) END
		WHERE id = $2 AND bracket_id IS NULL AND status = $3`
	result, err := r.db.ExecContext(ctx, query, userID, id, models.StatusRegistration)
	if err != nil {
		return fmt.Errorf("failed to add participant %s to tournament %s: %w", userID, id, err)
	}
	return r.checkRosterUpdate(ctx, result, id)
}

func (r *postgresTournamentRepository) RemoveParticipant(ctx context.Context, id, userID string) error {
	query := `UPDATE tournaments SET participants = array_remove(participants, $1) WHERE id = $2 AND bracket_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("failed to remove participant %s from tournament %s: %w", userID, id, err)
	}
	return r.checkRosterUpdate(ctx, result, id)
}

// checkRosterUpdate отличает заблокированный состав от несуществующего турнира.
func (r *postgresTournamentRepository) checkRosterUpdate(ctx context.Context, result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tournaments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check tournament %s: %w", id, err)
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return ErrRosterLocked
}

func (r *postgresTournamentRepository) UpdateStaff(ctx context.Context, id string, staff []string) error {
	query := `UPDATE tournaments SET staff = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, pq.Array(staff), id)
	if err != nil {
		return fmt.Errorf("failed to update staff of tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListFinishedSince(ctx context.Context, since time.Time) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND finished_at >= $2
		ORDER BY finished_at ASC`
	return r.queryTournaments(ctx, query, models.StatusFinished, since)
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, query string, args ...interface{}) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	var participants, staff pq.StringArray
	if err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Status, &participants, &staff, &t.CreatedBy,
		&t.BracketID, &t.WinnerID, &t.FinishedAt, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.Participants = []string(participants)
	t.Staff = []string(staff)
	if t.Participants == nil {
		t.Participants = []string{}
	}
	if t.Staff == nil {
		t.Staff = []string{}
	}
	return &t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == "tournaments_created_by_name_key" {
				return ErrTournamentNameConflict
			}
		case pqForeignKeyViolation:
			if pqErr.Constraint == "tournaments_bracket_id_fkey" {
				return ErrBracketNotFound
			}
		}
	}
	return err
}
