package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memorial-backend/internal/domains/group/model"
	"memorial-backend/internal/domains/group/service"
	"memorial-backend/internal/shared/middleware"
	"memorial-backend/internal/shared/response"
	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/logger"
)

const maxUploadBytes = 10 << 20

type GroupHandler struct {
	service *service.Service
}

func NewGroupHandler(service *service.Service) *GroupHandler {
	return &GroupHandler{service: service}
}

// Create handles POST /groups. Multipart: scalar fields plus an
// optional cover_image file.
func (h *GroupHandler) Create(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.SaveGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}

	media, err := coverMedia(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.service.Create(c.Request.Context(), actorID, req, media)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, group)
}

// Update handles PUT /groups/:id.
func (h *GroupHandler) Update(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid group ID")
		return
	}

	var req model.SaveGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}

	media, err := coverMedia(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.service.Update(c.Request.Context(), actorID, groupID, req, media)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// Get handles GET /groups/:id.
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid group ID")
		return
	}

	group, err := h.service.Get(c.Request.Context(), groupID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// List handles GET /groups.
func (h *GroupHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	groups, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, groups)
}

// ListMembers handles GET /groups/:id/members.
func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid group ID")
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, members)
}

func (h *GroupHandler) writeError(c *gin.Context, err error) {
	if _, ok := workflow.AsSaveError(err); ok {
		response.SaveFailure(c, err)
		return
	}

	switch {
	case errors.Is(err, model.ErrGroupNotFound):
		response.NotFound(c, "Group not found")
	case errors.Is(err, model.ErrNotAdmin):
		response.Forbidden(c, "Only group admins can edit this group")
	case errors.Is(err, model.ErrAlreadyMember):
		response.Conflict(c, "User is already a member of this group")
	default:
		logger.Error("group request failed", err)
		response.InternalServerError(c, "Something went wrong")
	}
}

func coverMedia(c *gin.Context) ([]workflow.MediaSelection, error) {
	header, err := c.FormFile("cover_image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("invalid cover_image upload")
	}

	if header.Size > maxUploadBytes {
		return nil, errors.New("cover_image exceeds the 10MB upload limit")
	}

	f, err := header.Open()
	if err != nil {
		return nil, errors.New("failed to read cover_image upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("failed to read cover_image upload")
	}

	return []workflow.MediaSelection{{
		Slot:        "cover_image_url",
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}}, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
