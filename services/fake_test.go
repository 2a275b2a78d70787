package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/Dosada05/tournament-arena/storage"
)

// ------------------------
// Fake Tournament Repository
// ------------------------

type FakeTournamentRepository struct {
	CreateFunc            func(ctx context.Context, t *models.Tournament) error
	GetByIDFunc           func(ctx context.Context, id string) (*models.Tournament, error)
	ListFunc              func(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	AttachBracketFunc     func(ctx context.Context, exec repositories.SQLExecutor, id, bracketID string, status models.TournamentStatus) error
	MarkFinishedFunc      func(ctx context.Context, exec repositories.SQLExecutor, id, winnerID string, finishedAt time.Time) error
	AddParticipantFunc    func(ctx context.Context, id, userID string) error
	RemoveParticipantFunc func(ctx context.Context, id, userID string) error
	UpdateStaffFunc       func(ctx context.Context, id string, staff []string) error
	UpdateStatusFunc      func(ctx context.Context, id string, status models.TournamentStatus) error
	ListFinishedSinceFunc func(ctx context.Context, since time.Time) ([]models.Tournament, error)
}

func NewFakeTournamentRepository() *FakeTournamentRepository {
	return &FakeTournamentRepository{}
}

func (f *FakeTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, t)
	}
	return nil
}

func (f *FakeTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *FakeTournamentRepository) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, filter)
	}
	return []models.Tournament{}, nil
}

func (f *FakeTournamentRepository) AttachBracket(ctx context.Context, exec repositories.SQLExecutor, id, bracketID string, status models.TournamentStatus) error {
	if f.AttachBracketFunc != nil {
		return f.AttachBracketFunc(ctx, exec, id, bracketID, status)
	}
	return nil
}

func (f *FakeTournamentRepository) MarkFinished(ctx context.Context, exec repositories.SQLExecutor, id, winnerID string, finishedAt time.Time) error {
	if f.MarkFinishedFunc != nil {
		return f.MarkFinishedFunc(ctx, exec, id, winnerID, finishedAt)
	}
	return nil
}

func (f *FakeTournamentRepository) AddParticipant(ctx context.Context, id, userID string) error {
	if f.AddParticipantFunc != nil {
		return f.AddParticipantFunc(ctx, id, userID)
	}
	return nil
}

func (f *FakeTournamentRepository) RemoveParticipant(ctx context.Context, id, userID string) error {
	if f.RemoveParticipantFunc != nil {
		return f.RemoveParticipantFunc(ctx, id, userID)
	}
	return nil
}

func (f *FakeTournamentRepository) UpdateStaff(ctx context.Context, id string, staff []string) error {
	if f.UpdateStaffFunc != nil {
		return f.UpdateStaffFunc(ctx, id, staff)
	}
	return nil
}

func (f *FakeTournamentRepository) UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (f *FakeTournamentRepository) ListFinishedSince(ctx context.Context, since time.Time) ([]models.Tournament, error) {
	if f.ListFinishedSinceFunc != nil {
		return f.ListFinishedSinceFunc(ctx, since)
	}
	return []models.Tournament{}, nil
}

// ------------------------
// Fake Bracket Repository
// ------------------------

type FakeBracketRepository struct {
	CreateFunc          func(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) error
	GetByIDFunc         func(ctx context.Context, id string) (*models.Bracket, error)
	GetByTournamentFunc func(ctx context.Context, tournamentID string) (*models.Bracket, error)
	UpdateMatchesFunc   func(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) error
}

func NewFakeBracketRepository() *FakeBracketRepository {
	return &FakeBracketRepository{}
}

func (f *FakeBracketRepository) Create(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, b)
	}
	return nil
}

func (f *FakeBracketRepository) GetByID(ctx context.Context, id string) (*models.Bracket, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrBracketNotFound
}

func (f *FakeBracketRepository) GetByTournament(ctx context.Context, tournamentID string) (*models.Bracket, error) {
	if f.GetByTournamentFunc != nil {
		return f.GetByTournamentFunc(ctx, tournamentID)
	}
	return nil, repositories.ErrBracketNotFound
}

func (f *FakeBracketRepository) UpdateMatches(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) error {
	if f.UpdateMatchesFunc != nil {
		return f.UpdateMatchesFunc(ctx, exec, b)
	}
	b.Version++
	return nil
}

// ------------------------
// Fake User Repository
// ------------------------

type FakeUserRepository struct {
	CreateFunc              func(ctx context.Context, u *models.User) error
	GetByIDFunc             func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.User, error)
	GetByIDsFunc            func(ctx context.Context, ids []string) (map[string]*models.User, error)
	CountTournamentsWonFunc func(ctx context.Context, id string) (int, error)
	LeaderboardFunc         func(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{}
}

func (f *FakeUserRepository) Create(ctx context.Context, u *models.User) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, u)
	}
	return nil
}

func (f *FakeUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrUserNotFound
}

func (f *FakeUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	return nil, repositories.ErrUserNotFound
}

func (f *FakeUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	if f.GetByIDsFunc != nil {
		return f.GetByIDsFunc(ctx, ids)
	}
	return map[string]*models.User{}, nil
}

func (f *FakeUserRepository) CountTournamentsWon(ctx context.Context, id string) (int, error) {
	if f.CountTournamentsWonFunc != nil {
		return f.CountTournamentsWonFunc(ctx, id)
	}
	return 0, nil
}

func (f *FakeUserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, limit)
	}
	return []models.LeaderboardEntry{}, nil
}

// ------------------------
// Fake Badge Repository
// ------------------------

// FakeBadgeRepository keeps awards in memory unless the award funcs are overridden.
type FakeBadgeRepository struct {
	mu     sync.Mutex
	awards map[string]models.Award

	CreateFunc                func(ctx context.Context, b *models.Badge) error
	GetByIDFunc               func(ctx context.Context, id string) (*models.Badge, error)
	ListFunc                  func(ctx context.Context) ([]models.Badge, error)
	UpdateImageKeyFunc        func(ctx context.Context, id string, imageKey *string) error
	CreateRuleFunc            func(ctx context.Context, rule *models.BadgeRule) error
	ListRulesByTournamentFunc func(ctx context.Context, tournamentID string) ([]models.BadgeRule, error)
	GetAwardFunc              func(ctx context.Context, userID, badgeID string) (*models.Award, error)
	CreateAwardFunc           func(ctx context.Context, a *models.Award) error
	ListAwardsByUserFunc      func(ctx context.Context, userID string) ([]models.Award, error)
}

func NewFakeBadgeRepository() *FakeBadgeRepository {
	return &FakeBadgeRepository{awards: map[string]models.Award{}}
}

func awardKey(userID, badgeID string) string {
	return userID + "|" + badgeID
}

func (f *FakeBadgeRepository) Awards() []models.Award {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Award, 0, len(f.awards))
	for _, a := range f.awards {
		out = append(out, a)
	}
	return out
}

func (f *FakeBadgeRepository) Create(ctx context.Context, b *models.Badge) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, b)
	}
	return nil
}

func (f *FakeBadgeRepository) GetByID(ctx context.Context, id string) (*models.Badge, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrBadgeNotFound
}

func (f *FakeBadgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return []models.Badge{}, nil
}

func (f *FakeBadgeRepository) UpdateImageKey(ctx context.Context, id string, imageKey *string) error {
	if f.UpdateImageKeyFunc != nil {
		return f.UpdateImageKeyFunc(ctx, id, imageKey)
	}
	return nil
}

func (f *FakeBadgeRepository) CreateRule(ctx context.Context, rule *models.BadgeRule) error {
	if f.CreateRuleFunc != nil {
		return f.CreateRuleFunc(ctx, rule)
	}
	return nil
}

func (f *FakeBadgeRepository) ListRulesByTournament(ctx context.Context, tournamentID string) ([]models.BadgeRule, error) {
	if f.ListRulesByTournamentFunc != nil {
		return f.ListRulesByTournamentFunc(ctx, tournamentID)
	}
	return []models.BadgeRule{}, nil
}

func (f *FakeBadgeRepository) GetAward(ctx context.Context, userID, badgeID string) (*models.Award, error) {
	if f.GetAwardFunc != nil {
		return f.GetAwardFunc(ctx, userID, badgeID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.awards[awardKey(userID, badgeID)]; ok {
		return &a, nil
	}
	return nil, repositories.ErrAwardNotFound
}

func (f *FakeBadgeRepository) CreateAward(ctx context.Context, a *models.Award) error {
	if f.CreateAwardFunc != nil {
		return f.CreateAwardFunc(ctx, a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := awardKey(a.UserID, a.BadgeID)
	if _, ok := f.awards[key]; ok {
		return repositories.ErrAwardAlreadyIssued
	}
	f.awards[key] = *a
	return nil
}

func (f *FakeBadgeRepository) ListAwardsByUser(ctx context.Context, userID string) ([]models.Award, error) {
	if f.ListAwardsByUserFunc != nil {
		return f.ListAwardsByUserFunc(ctx, userID)
	}
	out := []models.Award{}
	for _, a := range f.Awards() {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ------------------------
// Fake collaborators
// ------------------------

type FakeTransactor struct {
	Calls int
	Err   error
}

func (f *FakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.Calls++
	if f.Err != nil {
		return f.Err
	}
	return fn(nil)
}

type FakeStaffChecker struct {
	IsStaffFunc func(ctx context.Context, userID, tournamentID string) (bool, error)
}

func (f *FakeStaffChecker) IsStaff(ctx context.Context, userID, tournamentID string) (bool, error) {
	if f.IsStaffFunc != nil {
		return f.IsStaffFunc(ctx, userID, tournamentID)
	}
	return true, nil
}

func denyStaff() *FakeStaffChecker {
	return &FakeStaffChecker{IsStaffFunc: func(context.Context, string, string) (bool, error) { return false, nil }}
}

type publishedEvent struct {
	TournamentID string
	Type         string
	Payload      interface{}
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *FakePublisher) Publish(tournamentID, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{TournamentID: tournamentID, Type: eventType, Payload: payload})
}

func (f *FakePublisher) Types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type FakeRewardDispatcher struct {
	Calls []string
}

func (f *FakeRewardDispatcher) DispatchRewards(ctx context.Context, tournamentID, finalMatchID string, matches []models.Match) {
	f.Calls = append(f.Calls, tournamentID+"/"+finalMatchID)
}

type FakeUploader struct {
	Uploaded map[string]string
	Deleted  []string
	Err      error
}

func NewFakeUploader() *FakeUploader {
	return &FakeUploader{Uploaded: map[string]string{}}
}

func (f *FakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	f.Uploaded[key] = contentType
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *FakeUploader) Delete(ctx context.Context, key string) error {
	f.Deleted = append(f.Deleted, key)
	return nil
}

func (f *FakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}
