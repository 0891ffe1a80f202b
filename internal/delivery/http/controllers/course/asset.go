package course

import (
	"context"
	"net/http"

	"LearnForge/internal/delivery/http/controllers/response"
	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssetService interface {
	UploadAsset(ctx context.Context, courseID uuid.UUID, file models.Upload) (string, error)
	UploadContentAsset(ctx context.Context, courseID, itemID uuid.UUID, file models.Upload) (*models.Course, error)
	UploadThumbnail(ctx context.Context, courseID uuid.UUID, file models.Upload) (*models.Course, error)
}

type AssetHandler struct {
	log     logger.Log
	service AssetService
}

func NewAssetHandler(log logger.Log, s AssetService) *AssetHandler {
	return &AssetHandler{
		log:     log,
		service: s,
	}
}

// withUpload opens the multipart "file" field and hands it to fn.
func (h *AssetHandler) withUpload(c *gin.Context, fn func(models.Upload)) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	defer file.Close()

	fn(models.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
}

func (h *AssetHandler) UploadAsset(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	h.withUpload(c, func(file models.Upload) {
		url, err := h.service.UploadAsset(c.Request.Context(), courseID, file)
		if err != nil {
			response.Fail(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	})
}

func (h *AssetHandler) UploadContentAsset(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	contentID, ok := response.ParamUUID(c, "content_id")
	if !ok {
		return
	}
	h.withUpload(c, func(file models.Upload) {
		course, err := h.service.UploadContentAsset(c.Request.Context(), courseID, contentID, file)
		if err != nil {
			response.Fail(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, course)
	})
}

func (h *AssetHandler) UploadThumbnail(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	h.withUpload(c, func(file models.Upload) {
		course, err := h.service.UploadThumbnail(c.Request.Context(), courseID, file)
		if err != nil {
			response.Fail(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, course)
	})
}
