package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quercia-ai/docpilot/internal/api"
	"github.com/quercia-ai/docpilot/internal/api/middleware"
	"github.com/quercia-ai/docpilot/internal/domain"
)

type AskService interface {
	Answer(ctx context.Context, tenantID, question string) (domain.Answer, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Origin  string   `json:"origin"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.svc.Answer(r.Context(), tenantID, req.Question)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	api.Success(w, http.StatusOK, AskResponse{
		Answer:  answer.Text,
		Sources: sources,
		Origin:  string(answer.Origin),
	})
}
