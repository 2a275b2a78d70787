package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAdminPolicy(t *testing.T) {
	p := NewStaticAdminPolicy([]string{"env-admin", ""}, []string{"file-admin", "env-admin"})

	assert.True(t, p.IsAdmin("env-admin"))
	assert.True(t, p.IsAdmin("file-admin"))
	assert.False(t, p.IsAdmin("someone"))
	assert.False(t, p.IsAdmin(""))
	assert.Equal(t, 2, p.Len())

	p.Replace([]string{"new-admin"})
	assert.False(t, p.IsAdmin("env-admin"))
	assert.True(t, p.IsAdmin("new-admin"))
}

func TestStaffGate_IsStaff(t *testing.T) {
	tournament := &models.Tournament{ID: "t1", CreatedBy: "creator", Staff: []string{"helper"}}
	storeDown := errors.New("connection refused")

	tests := []struct {
		name       string
		userID     string
		setupRepo  func(*FakeTournamentRepository)
		want       bool
		wantErr    error
		wantLookup bool
	}{
		{
			name:   "admin short-circuits without lookup",
			userID: "admin",
			want:   true,
		},
		{
			name:       "creator",
			userID:     "creator",
			want:       true,
			wantLookup: true,
		},
		{
			name:       "listed staff",
			userID:     "helper",
			want:       true,
			wantLookup: true,
		},
		{
			name:       "stranger",
			userID:     "stranger",
			want:       false,
			wantLookup: true,
		},
		{
			name:   "empty user",
			userID: "",
			want:   false,
		},
		{
			name:   "unknown tournament",
			userID: "stranger",
			setupRepo: func(f *FakeTournamentRepository) {
				f.GetByIDFunc = nil
			},
			wantErr:    ErrTournamentNotFound,
			wantLookup: true,
		},
		{
			name:   "store failure is wrapped",
			userID: "stranger",
			setupRepo: func(f *FakeTournamentRepository) {
				f.GetByIDFunc = func(context.Context, string) (*models.Tournament, error) { return nil, storeDown }
			},
			wantErr:    ErrStoreUnavailable,
			wantLookup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookups := 0
			repo := NewFakeTournamentRepository()
			repo.GetByIDFunc = func(context.Context, string) (*models.Tournament, error) {
				return tournament, nil
			}
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			inner := repo.GetByIDFunc
			repo.GetByIDFunc = func(ctx context.Context, id string) (*models.Tournament, error) {
				lookups++
				if inner == nil {
					return NewFakeTournamentRepository().GetByID(ctx, id)
				}
				return inner(ctx, id)
			}

			gate := NewStaffGate(repo, NewStaticAdminPolicy([]string{"admin"}))
			got, err := gate.IsStaff(context.Background(), tt.userID, "t1")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantLookup, lookups > 0)
		})
	}
}
