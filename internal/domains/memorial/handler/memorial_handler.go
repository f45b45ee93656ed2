package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memorial-backend/internal/domains/memorial/model"
	"memorial-backend/internal/domains/memorial/service"
	"memorial-backend/internal/shared/middleware"
	"memorial-backend/internal/shared/response"
	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/logger"
)

const maxUploadBytes = 10 << 20

type MemorialHandler struct {
	service *service.Service
}

func NewMemorialHandler(service *service.Service) *MemorialHandler {
	return &MemorialHandler{service: service}
}

// Create handles POST /memorials. Multipart: scalar fields plus
// optional profile_image and cover_image files.
func (h *MemorialHandler) Create(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.SaveMemorialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}

	media, err := memorialMedia(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := h.service.Create(c.Request.Context(), actorID, req, media)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if out.Warning != nil {
		response.SuccessWithWarning(c, http.StatusCreated, out.Memorial, out.Warning.Error())
		return
	}
	response.Success(c, http.StatusCreated, out.Memorial)
}

// Update handles PUT /memorials/:id with the same multipart shape as
// Create.
func (h *MemorialHandler) Update(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	memorialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid memorial ID")
		return
	}

	var req model.SaveMemorialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}

	media, err := memorialMedia(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := h.service.Update(c.Request.Context(), actorID, memorialID, req, media)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if out.Warning != nil {
		response.SuccessWithWarning(c, http.StatusOK, out.Memorial, out.Warning.Error())
		return
	}
	response.Success(c, http.StatusOK, out.Memorial)
}

// Get handles GET /memorials/:id.
func (h *MemorialHandler) Get(c *gin.Context) {
	memorialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid memorial ID")
		return
	}

	memorial, err := h.service.Get(c.Request.Context(), memorialID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, memorial)
}

// List handles GET /memorials. With mine=true it returns the actor's
// memorials; otherwise the public listing.
func (h *MemorialHandler) List(c *gin.Context) {
	if c.Query("mine") == "true" {
		actorID, ok := middleware.ActorID(c)
		if !ok {
			response.Unauthorized(c, "Authentication required")
			return
		}
		memorials, err := h.service.ListByOwner(c.Request.Context(), actorID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, memorials)
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	memorials, err := h.service.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, memorials)
}

// Delete handles DELETE /memorials/:id.
func (h *MemorialHandler) Delete(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	memorialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid memorial ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID, memorialID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": memorialID})
}

func (h *MemorialHandler) writeError(c *gin.Context, err error) {
	if _, ok := workflow.AsSaveError(err); ok {
		response.SaveFailure(c, err)
		return
	}

	switch {
	case errors.Is(err, model.ErrMemorialNotFound):
		response.NotFound(c, "Memorial not found")
	case errors.Is(err, model.ErrNotOwner):
		response.Forbidden(c, "You do not have permission to modify this memorial")
	default:
		logger.Error("memorial request failed", err)
		response.InternalServerError(c, "Something went wrong")
	}
}

// memorialMedia collects the pending uploads from the multipart form.
func memorialMedia(c *gin.Context) ([]workflow.MediaSelection, error) {
	var media []workflow.MediaSelection

	for _, f := range []struct {
		field string
		slot  string
	}{
		{"profile_image", "profile_image_url"},
		{"cover_image", "cover_image_url"},
	} {
		sel, ok, err := fileSelection(c, f.field, f.slot)
		if err != nil {
			return nil, err
		}
		if ok {
			media = append(media, sel)
		}
	}

	return media, nil
}

func fileSelection(c *gin.Context, field, slot string) (workflow.MediaSelection, bool, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return workflow.MediaSelection{}, false, nil
		}
		return workflow.MediaSelection{}, false, errors.New("invalid " + field + " upload")
	}

	if header.Size > maxUploadBytes {
		return workflow.MediaSelection{}, false, errors.New(field + " exceeds the 10MB upload limit")
	}

	data, err := readFile(header)
	if err != nil {
		return workflow.MediaSelection{}, false, errors.New("failed to read " + field + " upload")
	}

	return workflow.MediaSelection{
		Slot:        slot,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
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
