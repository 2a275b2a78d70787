package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterService_Resolve(t *testing.T) {
	handle := "@bea"
	repo := NewFakeTournamentRepository()
	repo.GetByIDFunc = func(_ context.Context, id string) (*models.Tournament, error) {
		return &models.Tournament{ID: id, Participants: []string{"u3", "u1", "ghost", "u2"}}, nil
	}
	users := NewFakeUserRepository()
	users.GetByIDsFunc = func(_ context.Context, ids []string) (map[string]*models.User, error) {
		return map[string]*models.User{
			"u1": {ID: "u1", DisplayName: "Ana"},
			"u2": {ID: "u2", DisplayName: "Bea", ContactHandle: &handle},
			"u3": {ID: "u3", DisplayName: ""},
		}, nil
	}

	svc := NewRosterService(repo, users, nil)
	got, err := svc.Resolve(context.Background(), "t1")
	require.NoError(t, err)

	want := []models.Participant{
		{ID: "u3", DisplayName: models.DefaultParticipantName},
		{ID: "u1", DisplayName: "Ana"},
		{ID: "ghost", DisplayName: models.DefaultParticipantName},
		{ID: "u2", DisplayName: "Bea", ContactHandle: &handle},
	}
	assert.Equal(t, want, got)
}

func TestRosterService_ResolveIDs_LargeRosterKeepsOrder(t *testing.T) {
	faker := gofakeit.New(42)
	ids := make([]string, 357)
	names := make(map[string]string, len(ids))
	for i := range ids {
		ids[i] = faker.UUID()
		if i%7 != 0 {
			names[ids[i]] = faker.Name()
		}
	}

	var calls atomic.Int32
	users := NewFakeUserRepository()
	users.GetByIDsFunc = func(_ context.Context, batch []string) (map[string]*models.User, error) {
		calls.Add(1)
		assert.LessOrEqual(t, len(batch), rosterLookupBatch)
		out := make(map[string]*models.User, len(batch))
		for _, id := range batch {
			if name, ok := names[id]; ok {
				out[id] = &models.User{ID: id, DisplayName: name}
			}
		}
		return out, nil
	}

	svc := NewRosterService(NewFakeTournamentRepository(), users, nil)
	got, err := svc.ResolveIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	assert.Equal(t, int32(4), calls.Load())

	for i, p := range got {
		assert.Equal(t, ids[i], p.ID, "position %d", i)
		if name, ok := names[ids[i]]; ok {
			assert.Equal(t, name, p.DisplayName)
		} else {
			assert.Equal(t, models.DefaultParticipantName, p.DisplayName)
			assert.Nil(t, p.ContactHandle)
		}
	}
}

func TestRosterService_Errors(t *testing.T) {
	t.Run("unknown tournament", func(t *testing.T) {
		svc := NewRosterService(NewFakeTournamentRepository(), NewFakeUserRepository(), nil)
		_, err := svc.Resolve(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("profile lookup failure", func(t *testing.T) {
		users := NewFakeUserRepository()
		users.GetByIDsFunc = func(context.Context, []string) (map[string]*models.User, error) {
			return nil, errors.New("timeout")
		}
		svc := NewRosterService(NewFakeTournamentRepository(), users, nil)
		_, err := svc.ResolveIDs(context.Background(), []string{"a", "b"})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("empty roster", func(t *testing.T) {
		svc := NewRosterService(NewFakeTournamentRepository(), NewFakeUserRepository(), nil)
		got, err := svc.ResolveIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, "[]", fmt.Sprint(got))
	})
}
