package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-arena/brackets"
	"github.com/Dosada05/tournament-arena/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки движка сетки
	ErrInsufficientParticipants = brackets.ErrInsufficientParticipants
	ErrMatchNotFound            = brackets.ErrMatchNotFound
	ErrInvalidScore             = brackets.ErrInvalidScore
	ErrTiedScoreNotAllowed      = brackets.ErrTiedScoreNotAllowed
	ErrMatchAlreadyCompleted    = brackets.ErrMatchAlreadyCompleted
	ErrMatchNotReady            = brackets.ErrMatchNotReady
	ErrMatchNotPlayable         = brackets.ErrMatchNotPlayable
	ErrSlotConflict             = brackets.ErrSlotConflict
	ErrBracketFinished          = brackets.ErrBracketFinished

	// Ошибки хранилища, которые пробрасываются как есть
	ErrBracketNotFound        = repositories.ErrBracketNotFound
	ErrBracketAlreadyExists   = repositories.ErrBracketExists
	ErrBracketVersionConflict = repositories.ErrBracketVersionConflict
	ErrTournamentNotFound     = repositories.ErrTournamentNotFound
	ErrTournamentNameConflict = repositories.ErrTournamentNameConflict
	ErrUserNotFound           = repositories.ErrUserNotFound
	ErrUserEmailConflict      = repositories.ErrUserEmailConflict
	ErrBadgeNotFound          = repositories.ErrBadgeNotFound
	ErrBadgeSlugConflict      = repositories.ErrBadgeSlugConflict
	ErrBadgeRuleConflict      = repositories.ErrBadgeRuleConflict
	ErrBadgeRuleInvalid       = repositories.ErrBadgeRuleInvalid
	ErrRosterLocked           = repositories.ErrRosterLocked

	// Ошибки авторизации
	ErrUnauthorized         = errors.New("caller is not allowed to manage this tournament")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid email or password")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrRegistrationNotOpen  = errors.New("tournament registration is not open")
	ErrTournamentClosed     = errors.New("tournament is finished or canceled")
	ErrInvalidBadgePosition = errors.New("invalid badge position")
	ErrUnsupportedImageType = errors.New("unsupported image content type")

	// ErrStoreUnavailable wraps every unexpected persistence failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeError passes known repository sentinels through and wraps anything else in
// ErrStoreUnavailable.
func storeError(op string, err error, passthrough ...error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
