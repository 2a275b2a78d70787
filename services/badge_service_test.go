package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/Dosada05/tournament-arena/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeService_Create(t *testing.T) {
	desc := "Won a tournament"
	tests := []struct {
		name      string
		input     CreateBadgeInput
		setupRepo func(*FakeBadgeRepository)
		uploader  storage.FileUploader
		wantErr   error
		check     func(t *testing.T, b *models.Badge, up *FakeUploader)
	}{
		{
			name:  "without image",
			input: CreateBadgeInput{Name: "  Grand Champion ", Description: &desc, CallerID: "admin"},
			check: func(t *testing.T, b *models.Badge, up *FakeUploader) {
				assert.Equal(t, "Grand Champion", b.Name)
				assert.Equal(t, "grand-champion", b.Slug)
				assert.Nil(t, b.ImageKey)
				assert.Nil(t, b.ImageURL)
				assert.Empty(t, up.Uploaded)
			},
		},
		{
			name: "with image",
			input: CreateBadgeInput{
				Name: "Día de Campeones", Image: strings.NewReader("png-bytes"), ContentType: "image/png", CallerID: "admin",
			},
			check: func(t *testing.T, b *models.Badge, up *FakeUploader) {
				require.NotNil(t, b.ImageKey)
				assert.True(t, strings.HasPrefix(*b.ImageKey, "badges/dia-de-campeones-"))
				assert.True(t, strings.HasSuffix(*b.ImageKey, ".png"))
				assert.Equal(t, "image/png", up.Uploaded[*b.ImageKey])
				require.NotNil(t, b.ImageURL)
				assert.Equal(t, "https://cdn.test/"+*b.ImageKey, *b.ImageURL)
			},
		},
		{
			name:    "caller is not admin",
			input:   CreateBadgeInput{Name: "Gold", CallerID: "player"},
			wantErr: ErrUnauthorized,
		},
		{
			name:    "blank name",
			input:   CreateBadgeInput{Name: "   ", CallerID: "admin"},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "unsupported image type",
			input:   CreateBadgeInput{Name: "Gold", Image: strings.NewReader("gif"), ContentType: "image/gif", CallerID: "admin"},
			wantErr: ErrUnsupportedImageType,
		},
		{
			name:     "storage disabled",
			input:    CreateBadgeInput{Name: "Gold", Image: strings.NewReader("png"), ContentType: "image/png", CallerID: "admin"},
			uploader: storage.DisabledUploader{},
			wantErr:  storage.ErrStorageDisabled,
		},
		{
			name:  "slug conflict removes uploaded image",
			input: CreateBadgeInput{Name: "Gold", Image: strings.NewReader("png"), ContentType: "image/png", CallerID: "admin"},
			setupRepo: func(f *FakeBadgeRepository) {
				f.CreateFunc = func(context.Context, *models.Badge) error { return repositories.ErrBadgeSlugConflict }
			},
			wantErr: ErrBadgeSlugConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeBadgeRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			up := NewFakeUploader()
			var uploader storage.FileUploader = up
			if tt.uploader != nil {
				uploader = tt.uploader
			}
			svc := NewBadgeService(repo, uploader, NewStaticAdminPolicy([]string{"admin"}), &FakeStaffChecker{}, nil)

			b, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				assert.Len(t, up.Deleted, len(up.Uploaded))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, b.ID)
			tt.check(t, b, up)
		})
	}
}

func TestBadgeService_AddRule(t *testing.T) {
	repo := NewFakeBadgeRepository()
	repo.GetByIDFunc = func(_ context.Context, id string) (*models.Badge, error) {
		if id == "gold" {
			return &models.Badge{ID: "gold"}, nil
		}
		return nil, repositories.ErrBadgeNotFound
	}
	var created []models.BadgeRule
	repo.CreateRuleFunc = func(_ context.Context, r *models.BadgeRule) error {
		for _, c := range created {
			if c.TournamentID == r.TournamentID && c.BadgeID == r.BadgeID && c.Position == r.Position {
				return repositories.ErrBadgeRuleConflict
			}
		}
		created = append(created, *r)
		return nil
	}

	svc := NewBadgeService(repo, nil, NewStaticAdminPolicy(), &FakeStaffChecker{}, nil)
	in := CreateBadgeRuleInput{TournamentID: "t1", BadgeID: "gold", Position: models.PositionFirst, CallerID: "creator"}

	rule, err := svc.AddRule(context.Background(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.Len(t, created, 1)

	_, err = svc.AddRule(context.Background(), in)
	assert.ErrorIs(t, err, ErrBadgeRuleConflict)

	bad := in
	bad.Position = "fourth"
	_, err = svc.AddRule(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidBadgePosition)

	missing := in
	missing.BadgeID = "platinum"
	_, err = svc.AddRule(context.Background(), missing)
	assert.ErrorIs(t, err, ErrBadgeNotFound)

	denied := NewBadgeService(repo, nil, NewStaticAdminPolicy(), denyStaff(), nil)
	_, err = denied.AddRule(context.Background(), in)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBadgeService_List(t *testing.T) {
	key := "badges/gold.png"
	repo := NewFakeBadgeRepository()
	repo.ListFunc = func(context.Context) ([]models.Badge, error) {
		return []models.Badge{{ID: "gold", ImageKey: &key}, {ID: "plain"}}, nil
	}

	svc := NewBadgeService(repo, NewFakeUploader(), NewStaticAdminPolicy(), &FakeStaffChecker{}, nil)
	badges, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, badges, 2)
	require.NotNil(t, badges[0].ImageURL)
	assert.Equal(t, "https://cdn.test/badges/gold.png", *badges[0].ImageURL)
	assert.Nil(t, badges[1].ImageURL)

	repo.ListFunc = func(context.Context) ([]models.Badge, error) { return nil, errors.New("down") }
	_, err = svc.List(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
