package services

import (
	"context"
	"sync"

	"github.com/Dosada05/tournament-arena/repositories"
)

// AdminPolicy answers whether a user has platform-wide admin rights.
type AdminPolicy interface {
	IsAdmin(userID string) bool
}

// StaticAdminPolicy is an allowlist fixed at startup. Replace swaps it at runtime.
type StaticAdminPolicy struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewStaticAdminPolicy(lists ...[]string) *StaticAdminPolicy {
	p := &StaticAdminPolicy{}
	p.Replace(lists...)
	return p
}

func (p *StaticAdminPolicy) IsAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.ids[userID]
	return ok
}

func (p *StaticAdminPolicy) Replace(lists ...[]string) {
	ids := make(map[string]struct{})
	for _, list := range lists {
		for _, id := range list {
			if id != "" {
				ids[id] = struct{}{}
			}
		}
	}
	p.mu.Lock()
	p.ids = ids
	p.mu.Unlock()
}

func (p *StaticAdminPolicy) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.ids)
}

// StaffChecker decides whether a user may mutate a tournament's bracket.
type StaffChecker interface {
	IsStaff(ctx context.Context, userID, tournamentID string) (bool, error)
}

type StaffGate struct {
	tournamentRepo repositories.TournamentRepository
	admins         AdminPolicy
}

func NewStaffGate(tournamentRepo repositories.TournamentRepository, admins AdminPolicy) *StaffGate {
	return &StaffGate{tournamentRepo: tournamentRepo, admins: admins}
}

// IsStaff grants access to admins, then the tournament creator, then listed staff.
func (g *StaffGate) IsStaff(ctx context.Context, userID, tournamentID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if g.admins != nil && g.admins.IsAdmin(userID) {
		return true, nil
	}

	tournament, err := g.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return false, storeError("staff gate", err, ErrTournamentNotFound)
	}
	if tournament.CreatedBy == userID {
		return true, nil
	}
	return tournament.HasStaff(userID), nil
}
