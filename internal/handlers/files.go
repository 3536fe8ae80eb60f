package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/service"
)

type fileResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toFileResponse(doc models.Document) fileResponse {
	return fileResponse{
		ID:           doc.ID,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		CreatedAt:    doc.CreatedAt,
	}
}

func (h HandlerSet) UploadFile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file field is required."})
		return
	}
	defer file.Close()

	doc, err := h.uploadService.Upload(c.Request.Context(), service.UploadInput{
		User:   user,
		File:   file,
		Header: header,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the maximum allowed size."})
		case errors.Is(err, service.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is empty."})
		case errors.Is(err, service.ErrUnsupportedFileType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File type is not supported."})
		default:
			h.log.Error().Err(err).Msg("file upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File upload failed."})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": toFileResponse(doc)})
}

func (h HandlerSet) ListFiles(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	docs, err := h.documents.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("file listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list files."})
		return
	}

	resp := make([]fileResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toFileResponse(doc))
	}

	c.JSON(http.StatusOK, gin.H{"files": resp})
}

func (h HandlerSet) DeleteFile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.uploadService.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found."})
			return
		}
		h.log.Error().Err(err).Msg("file deletion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete file."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted."})
}
