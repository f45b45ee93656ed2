package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"memorial-backend/internal/domains/profile/model"
	"memorial-backend/internal/domains/profile/service"
	"memorial-backend/internal/shared/middleware"
	"memorial-backend/internal/shared/response"
	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/logger"
)

const maxUploadBytes = 10 << 20

type ProfileHandler struct {
	service *service.Service
}

func NewProfileHandler(service *service.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get handles GET /profiles/me.
func (h *ProfileHandler) Get(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	profile, err := h.service.Get(c.Request.Context(), actorID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// Save handles PUT /profiles/me. Multipart: scalar fields plus
// optional avatar and cover_image files. The first save creates the
// profile.
func (h *ProfileHandler) Save(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.SaveProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}

	media, err := profileMedia(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := h.service.Save(c.Request.Context(), actorID, req, media)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if out.Warning != nil {
		response.SuccessWithWarning(c, http.StatusOK, out.Profile, out.Warning.Error())
		return
	}
	response.Success(c, http.StatusOK, out.Profile)
}

// Delete handles DELETE /profiles/me.
func (h *ProfileHandler) Delete(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": actorID})
}

func (h *ProfileHandler) writeError(c *gin.Context, err error) {
	if _, ok := workflow.AsSaveError(err); ok {
		response.SaveFailure(c, err)
		return
	}

	if errors.Is(err, model.ErrProfileNotFound) {
		response.NotFound(c, "Profile not found")
		return
	}

	logger.Error("profile request failed", err)
	response.InternalServerError(c, "Something went wrong")
}

func profileMedia(c *gin.Context) ([]workflow.MediaSelection, error) {
	var media []workflow.MediaSelection

	for _, f := range []struct {
		field string
		slot  string
	}{
		{"avatar", "avatar_url"},
		{"cover_image", "cover_image_url"},
	} {
		header, err := c.FormFile(f.field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			return nil, errors.New("invalid " + f.field + " upload")
		}

		if header.Size > maxUploadBytes {
			return nil, errors.New(f.field + " exceeds the 10MB upload limit")
		}

		file, err := header.Open()
		if err != nil {
			return nil, errors.New("failed to read " + f.field + " upload")
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, errors.New("failed to read " + f.field + " upload")
		}

		media = append(media, workflow.MediaSelection{
			Slot:        f.slot,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return media, nil
}
