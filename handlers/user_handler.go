package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-arena/services"
)

type UserHandler struct {
	tournamentService services.TournamentService
}

func NewUserHandler(ts services.TournamentService) *UserHandler {
	return &UserHandler{tournamentService: ts}
}

// ProfileHandler обрабатывает GET /users/{userID}/profile
func (h *UserHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.tournamentService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaderboardHandler обрабатывает GET /leaderboard?limit=
func (h *UserHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.tournamentService.Leaderboard(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
