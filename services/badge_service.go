package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/Dosada05/tournament-arena/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const badgeImagePrefix = "badges"

var badgeImageExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type CreateBadgeInput struct {
	Name        string
	Description *string
	Image       io.Reader
	ContentType string
	CallerID    string
}

type CreateBadgeRuleInput struct {
	TournamentID string               `json:"-"`
	BadgeID      string               `json:"badge_id"`
	Position     models.BadgePosition `json:"position"`
	CallerID     string               `json:"-"`
}

type BadgeService interface {
	List(ctx context.Context) ([]models.Badge, error)
	Create(ctx context.Context, input CreateBadgeInput) (*models.Badge, error)
	AddRule(ctx context.Context, input CreateBadgeRuleInput) (*models.BadgeRule, error)
	ListRules(ctx context.Context, tournamentID string) ([]models.BadgeRule, error)
}

type badgeService struct {
	badgeRepo repositories.BadgeRepository
	uploader  storage.FileUploader
	admins    AdminPolicy
	staff     StaffChecker
	logger    *slog.Logger
}

func NewBadgeService(badgeRepo repositories.BadgeRepository, uploader storage.FileUploader, admins AdminPolicy, staff StaffChecker, logger *slog.Logger) BadgeService {
	if uploader == nil {
		uploader = storage.DisabledUploader{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &badgeService{
		badgeRepo: badgeRepo,
		uploader:  uploader,
		admins:    admins,
		staff:     staff,
		logger:    logger,
	}
}

func (s *badgeService) List(ctx context.Context) ([]models.Badge, error) {
	badges, err := s.badgeRepo.List(ctx)
	if err != nil {
		return nil, storeError("list badges", err)
	}
	for i := range badges {
		s.populateImageURL(&badges[i])
	}
	return badges, nil
}

func (s *badgeService) Create(ctx context.Context, in CreateBadgeInput) (*models.Badge, error) {
	if s.admins == nil || !s.admins.IsAdmin(in.CallerID) {
		return nil, ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: badge name is required", ErrValidationFailed)
	}
	badgeSlug := slug.Make(name)
	if badgeSlug == "" {
		return nil, fmt.Errorf("%w: badge name %q has no usable characters", ErrValidationFailed, name)
	}

	badge := &models.Badge{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        badgeSlug,
		Description: in.Description,
	}

	var uploadedKey string
	if in.Image != nil {
		ext, ok := badgeImageExtensions[in.ContentType]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedImageType, in.ContentType)
		}
		key := fmt.Sprintf("%s/%s-%s%s", badgeImagePrefix, badgeSlug, badge.ID[:8], ext)
		result, err := s.uploader.Upload(ctx, key, in.ContentType, in.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload badge image: %w", err)
		}
		uploadedKey = result.Key
		badge.ImageKey = &uploadedKey
	}

	if err := s.badgeRepo.Create(ctx, badge); err != nil {
		if uploadedKey != "" {
			if delErr := s.uploader.Delete(ctx, uploadedKey); delErr != nil {
				s.logger.Warn("failed to remove orphaned badge image", slog.String("key", uploadedKey), slog.Any("error", delErr))
			}
		}
		return nil, storeError("create badge", err, ErrBadgeSlugConflict)
	}

	s.populateImageURL(badge)
	return badge, nil
}

func (s *badgeService) AddRule(ctx context.Context, in CreateBadgeRuleInput) (*models.BadgeRule, error) {
	if !in.Position.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBadgePosition, in.Position)
	}
	ok, err := s.staff.IsStaff(ctx, in.CallerID, in.TournamentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	if _, err := s.badgeRepo.GetByID(ctx, in.BadgeID); err != nil {
		return nil, storeError("add badge rule", err, ErrBadgeNotFound)
	}

	rule := &models.BadgeRule{
		ID:           uuid.NewString(),
		TournamentID: in.TournamentID,
		BadgeID:      in.BadgeID,
		Position:     in.Position,
	}
	if err := s.badgeRepo.CreateRule(ctx, rule); err != nil {
		return nil, storeError("add badge rule", err, ErrBadgeRuleConflict, ErrBadgeRuleInvalid)
	}
	if in.Position == models.PositionTop3 {
		s.logger.Warn("top3 badge rule stored but never issued", slog.String("tournament_id", in.TournamentID), slog.String("badge_id", in.BadgeID))
	}
	return rule, nil
}

func (s *badgeService) ListRules(ctx context.Context, tournamentID string) ([]models.BadgeRule, error) {
	rules, err := s.badgeRepo.ListRulesByTournament(ctx, tournamentID)
	if err != nil {
		return nil, storeError("list badge rules", err)
	}
	return rules, nil
}

func (s *badgeService) populateImageURL(b *models.Badge) {
	if b.ImageKey == nil || *b.ImageKey == "" {
		return
	}
	if u := s.uploader.GetPublicURL(*b.ImageKey); u != "" {
		b.ImageURL = &u
	}
}
