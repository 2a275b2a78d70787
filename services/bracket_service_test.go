package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tournament-arena/brackets"
	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bracketFixture struct {
	tournaments *FakeTournamentRepository
	brackets    *FakeBracketRepository
	users       *FakeUserRepository
	tx          *FakeTransactor
	staff       *FakeStaffChecker
	events      *FakePublisher
	tournament  *models.Tournament
	stored      *models.Bracket
	creates     int
}

func newBracketFixture(roster ...string) *bracketFixture {
	fx := &bracketFixture{
		tournaments: NewFakeTournamentRepository(),
		brackets:    NewFakeBracketRepository(),
		users:       NewFakeUserRepository(),
		tx:          &FakeTransactor{},
		staff:       &FakeStaffChecker{},
		events:      &FakePublisher{},
		tournament: &models.Tournament{
			ID:           "t1",
			Status:       models.StatusRegistration,
			Participants: roster,
			CreatedBy:    "creator",
		},
	}
	fx.tournaments.GetByIDFunc = func(_ context.Context, id string) (*models.Tournament, error) {
		if id != fx.tournament.ID {
			return nil, repositories.ErrTournamentNotFound
		}
		cp := *fx.tournament
		return &cp, nil
	}
	fx.tournaments.AttachBracketFunc = func(_ context.Context, _ repositories.SQLExecutor, id, bracketID string, status models.TournamentStatus) error {
		if fx.tournament.BracketID != nil {
			return repositories.ErrTournamentHasBracket
		}
		fx.tournament.BracketID = &bracketID
		fx.tournament.Status = status
		return nil
	}
	fx.brackets.CreateFunc = func(_ context.Context, _ repositories.SQLExecutor, b *models.Bracket) error {
		if fx.stored != nil {
			return repositories.ErrBracketExists
		}
		fx.creates++
		b.Version = 1
		fx.stored = b
		return nil
	}
	fx.brackets.GetByTournamentFunc = func(_ context.Context, tournamentID string) (*models.Bracket, error) {
		if fx.stored == nil || fx.stored.TournamentID != tournamentID {
			return nil, repositories.ErrBracketNotFound
		}
		return fx.stored, nil
	}
	return fx
}

func (fx *bracketFixture) service() BracketService {
	return NewBracketService(BracketServiceDeps{
		Tx:             fx.tx,
		BracketRepo:    fx.brackets,
		TournamentRepo: fx.tournaments,
		Roster:         NewRosterService(fx.tournaments, fx.users, nil),
		Generator:      brackets.NewSingleEliminationGenerator(brackets.FixedSeeding{}),
		Staff:          fx.staff,
		Events:         fx.events,
	})
}

func TestBracketService_BuildBracket(t *testing.T) {
	fx := newBracketFixture("a", "b", "c", "d", "e")
	svc := fx.service()

	res, err := svc.BuildBracket(context.Background(), "t1", "creator")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEmpty(t, res.BracketID)

	require.NotNil(t, fx.stored)
	assert.Equal(t, res.BracketID, fx.stored.ID)
	assert.Equal(t, "creator", fx.stored.CreatedBy)
	assert.Equal(t, 5, fx.stored.ParticipantCount)
	assert.Len(t, fx.stored.Rounds, 3)
	assert.Equal(t, models.StatusActive, fx.tournament.Status)
	require.NotNil(t, fx.tournament.BracketID)
	assert.Equal(t, res.BracketID, *fx.tournament.BracketID)
	assert.Equal(t, 1, fx.tx.Calls)
	assert.Equal(t, []string{brackets.EventBracketUpdated}, fx.events.Types())

	// Unknown profiles fall back to the generic label.
	assert.Equal(t, models.DefaultParticipantName, fx.stored.Matches[0].Player1.Name)
}

func TestBracketService_BuildBracketIsIdempotent(t *testing.T) {
	fx := newBracketFixture("a", "b", "c")
	svc := fx.service()

	first, err := svc.BuildBracket(context.Background(), "t1", "creator")
	require.NoError(t, err)
	second, err := svc.BuildBracket(context.Background(), "t1", "creator")
	require.NoError(t, err)

	assert.Equal(t, first.BracketID, second.BracketID)
	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, 1, fx.creates)
}

func TestBracketService_BuildBracketFindsOrphanedBracket(t *testing.T) {
	fx := newBracketFixture("a", "b")
	fx.stored = &models.Bracket{ID: "existing", TournamentID: "t1"}

	res, err := fx.service().BuildBracket(context.Background(), "t1", "creator")
	require.NoError(t, err)
	assert.Equal(t, "existing", res.BracketID)
	assert.False(t, res.Created)
	assert.Zero(t, fx.tx.Calls)
}

func TestBracketService_BuildBracketLosesRace(t *testing.T) {
	fx := newBracketFixture("a", "b", "c", "d")
	winner := &models.Bracket{ID: "winner", TournamentID: "t1"}
	fx.brackets.GetByTournamentFunc = func(context.Context, string) (*models.Bracket, error) {
		if fx.tx.Calls == 0 {
			return nil, repositories.ErrBracketNotFound
		}
		return winner, nil
	}
	fx.brackets.CreateFunc = func(context.Context, repositories.SQLExecutor, *models.Bracket) error {
		return repositories.ErrBracketExists
	}

	res, err := fx.service().BuildBracket(context.Background(), "t1", "creator")
	require.NoError(t, err)
	assert.Equal(t, "winner", res.BracketID)
	assert.False(t, res.Created)
	assert.Empty(t, fx.events.Types())
}

func TestBracketService_BuildBracketErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*bracketFixture)
		caller  string
		wantErr error
	}{
		{
			name:    "not staff",
			setup:   func(fx *bracketFixture) { fx.staff = denyStaff() },
			caller:  "stranger",
			wantErr: ErrUnauthorized,
		},
		{
			name:    "single participant",
			setup:   func(fx *bracketFixture) { fx.tournament.Participants = []string{"solo"} },
			caller:  "creator",
			wantErr: ErrInsufficientParticipants,
		},
		{
			name:    "canceled tournament",
			setup:   func(fx *bracketFixture) { fx.tournament.Status = models.StatusCanceled },
			caller:  "creator",
			wantErr: ErrTournamentClosed,
		},
		{
			name:    "unknown tournament",
			setup:   func(fx *bracketFixture) { fx.tournament.ID = "other" },
			caller:  "creator",
			wantErr: ErrTournamentNotFound,
		},
		{
			name:    "transaction failure",
			setup:   func(fx *bracketFixture) { fx.tx.Err = errors.New("deadlock") },
			caller:  "creator",
			wantErr: ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newBracketFixture("a", "b", "c")
			tt.setup(fx)

			res, err := fx.service().BuildBracket(context.Background(), "t1", tt.caller)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			assert.Empty(t, fx.events.Types())
		})
	}
}

func TestBracketService_GetBracketView(t *testing.T) {
	fx := newBracketFixture("a", "b")
	svc := fx.service()

	view, err := svc.GetBracketView(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", view.Tournament.ID)
	assert.Nil(t, view.Bracket)

	_, err = svc.BuildBracket(context.Background(), "t1", "creator")
	require.NoError(t, err)

	view, err = svc.GetBracketView(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, view.Bracket)
	assert.Equal(t, fx.stored.ID, view.Bracket.ID)

	_, err = svc.GetBracketView(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
