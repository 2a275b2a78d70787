package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-arena/middleware"
	"github.com/Dosada05/tournament-arena/services"
)

type BracketHandler struct {
	bracketService services.BracketService
	matchService   services.MatchService
}

func NewBracketHandler(bs services.BracketService, ms services.MatchService) *BracketHandler {
	return &BracketHandler{
		bracketService: bs,
		matchService:   ms,
	}
}

// BuildHandler обрабатывает POST /tournaments/{tournamentID}/bracket.
// Повторный вызов возвращает уже существующую сетку.
func (h *BracketHandler) BuildHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to build a bracket")
		return
	}
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.BuildBracket(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetViewHandler обрабатывает GET /tournaments/{tournamentID}/bracket
func (h *BracketHandler) GetViewHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracketView(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reportResultRequest struct {
	Score1 *int `json:"score1"`
	Score2 *int `json:"score2"`
}

// ReportResultHandler обрабатывает POST /brackets/{bracketID}/matches/{matchID}/result
func (h *BracketHandler) ReportResultHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to report results")
		return
	}
	bracketID, err := urlParam(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := urlParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req reportResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.Score1 == nil || req.Score2 == nil {
		errorResponse(w, r, http.StatusBadRequest, "score1 and score2 are required")
		return
	}

	outcome, err := h.matchService.ReportResult(r.Context(), services.ReportResultInput{
		BracketID: bracketID,
		MatchID:   matchID,
		Score1:    *req.Score1,
		Score2:    *req.Score2,
		CallerID:  currentUserID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
