package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-arena/middleware"
	"github.com/Dosada05/tournament-arena/services"
)

const maxBadgeUploadSize = 5 << 20

type BadgeHandler struct {
	badgeService services.BadgeService
}

func NewBadgeHandler(bs services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badgeService: bs}
}

func (h *BadgeHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	badges, err := h.badgeService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"badges": badges}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler принимает multipart/form-data: name, description и необязательный файл image.
func (h *BadgeHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create badges")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBadgeUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxBadgeUploadSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	input := services.CreateBadgeInput{
		Name:     r.FormValue("name"),
		CallerID: currentUserID,
	}
	if desc := strings.TrimSpace(r.FormValue("description")); desc != "" {
		input.Description = &desc
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		badRequestResponse(w, r, fmt.Errorf("failed to get image file from form: %w", err))
		return
	default:
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			badRequestResponse(w, r, errors.New("content-type header is required for image"))
			return
		}
		input.Image = file
		input.ContentType = contentType
	}

	badge, err := h.badgeService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"badge": badge}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddRuleHandler обрабатывает POST /tournaments/{tournamentID}/badge-rules
func (h *BadgeHandler) AddRuleHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateBadgeRuleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID
	input.CallerID = currentUserID

	rule, err := h.badgeService.AddRule(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rule": rule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BadgeHandler) ListRulesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rules, err := h.badgeService.ListRules(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rules": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
