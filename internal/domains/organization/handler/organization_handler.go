package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memorial-backend/internal/domains/organization/repository"
	"memorial-backend/internal/shared/middleware"
	"memorial-backend/internal/shared/response"
	"memorial-backend/pkg/logger"
)

type OrganizationHandler struct {
	repo repository.Repository
}

func NewOrganizationHandler(repo repository.Repository) *OrganizationHandler {
	return &OrganizationHandler{repo: repo}
}

// List returns every organization, for the picker shown on memorial forms.
func (h *OrganizationHandler) List(c *gin.Context) {
	orgs, err := h.repo.List(c.Request.Context())
	if err != nil {
		logger.Error("failed to list organizations", err)
		response.InternalServerError(c, "Failed to list organizations")
		return
	}

	response.Success(c, http.StatusOK, orgs)
}

// ListMine returns the organizations the caller belongs to.
func (h *OrganizationHandler) ListMine(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	orgs, err := h.repo.ListForUser(c.Request.Context(), actorID)
	if err != nil {
		logger.Error("failed to list organizations for user", err)
		response.InternalServerError(c, "Failed to list organizations")
		return
	}

	response.Success(c, http.StatusOK, orgs)
}
