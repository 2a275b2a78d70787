package handlers

import (
	"context"

	"github.com/Dosada05/tournament-arena/models"
	"github.com/Dosada05/tournament-arena/services"
)

type FakeAuthService struct {
	RegisterFunc func(ctx context.Context, input services.RegisterInput) (*models.User, error)
	LoginFunc    func(ctx context.Context, input services.LoginInput) (*models.User, error)
}

func (f *FakeAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, input)
	}
	return &models.User{ID: "u1", Email: input.Email, DisplayName: input.DisplayName, Role: models.RolePlayer}, nil
}

func (f *FakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, input)
	}
	return nil, services.ErrInvalidCredentials
}

type FakeBracketService struct {
	BuildBracketFunc   func(ctx context.Context, tournamentID, callerID string) (*services.BuildResult, error)
	GetBracketFunc     func(ctx context.Context, bracketID string) (*models.Bracket, error)
	GetBracketViewFunc func(ctx context.Context, tournamentID string) (*services.BracketView, error)
}

func (f *FakeBracketService) BuildBracket(ctx context.Context, tournamentID, callerID string) (*services.BuildResult, error) {
	if f.BuildBracketFunc != nil {
		return f.BuildBracketFunc(ctx, tournamentID, callerID)
	}
	return &services.BuildResult{BracketID: "b1", Created: true}, nil
}

func (f *FakeBracketService) GetBracket(ctx context.Context, bracketID string) (*models.Bracket, error) {
	if f.GetBracketFunc != nil {
		return f.GetBracketFunc(ctx, bracketID)
	}
	return nil, services.ErrBracketNotFound
}

func (f *FakeBracketService) GetBracketView(ctx context.Context, tournamentID string) (*services.BracketView, error) {
	if f.GetBracketViewFunc != nil {
		return f.GetBracketViewFunc(ctx, tournamentID)
	}
	return nil, services.ErrTournamentNotFound
}

type FakeMatchService struct {
	ReportResultFunc func(ctx context.Context, input services.ReportResultInput) (*services.ReportOutcome, error)
	Inputs           []services.ReportResultInput
}

func (f *FakeMatchService) ReportResult(ctx context.Context, input services.ReportResultInput) (*services.ReportOutcome, error) {
	f.Inputs = append(f.Inputs, input)
	if f.ReportResultFunc != nil {
		return f.ReportResultFunc(ctx, input)
	}
	return &services.ReportOutcome{}, nil
}
