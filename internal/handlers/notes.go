package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/ids"
	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
)

type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteResponse(n models.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color,
		IsPinned:  n.IsPinned,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (h HandlerSet) ListNotes(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	notes, err := h.notes.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("note listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list notes."})
		return
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}

	c.JSON(http.StatusOK, gin.H{"notes": resp})
}

type noteRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content"`
	Color    string `json:"color"`
	IsPinned bool   `json:"isPinned"`
}

func (h HandlerSet) CreateNote(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A note title is required."})
		return
	}

	note := models.Note{
		ID:       ids.New(),
		UserID:   user.ID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Color:    req.Color,
		IsPinned: req.IsPinned,
	}

	if err := h.notes.Create(c.Request.Context(), note); err != nil {
		h.log.Error().Err(err).Msg("note creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create note."})
		return
	}

	created, err := h.notes.GetByID(c.Request.Context(), user.ID, note.ID)
	if err != nil {
		c.JSON(http.StatusCreated, gin.H{"note": toNoteResponse(note)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": toNoteResponse(created)})
}

func (h HandlerSet) GetNote(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	note, err := h.notes.GetByID(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found."})
			return
		}
		h.log.Error().Err(err).Msg("note lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load note."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": toNoteResponse(note)})
}

func (h HandlerSet) UpdateNote(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A note title is required."})
		return
	}

	note := models.Note{
		ID:       c.Param("id"),
		UserID:   user.ID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Color:    req.Color,
		IsPinned: req.IsPinned,
	}

	if err := h.notes.Update(c.Request.Context(), note); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found."})
			return
		}
		h.log.Error().Err(err).Msg("note update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update note."})
		return
	}

	updated, err := h.notes.GetByID(c.Request.Context(), user.ID, note.ID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"note": toNoteResponse(note)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": toNoteResponse(updated)})
}

func (h HandlerSet) DeleteNote(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.notes.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found."})
			return
		}
		h.log.Error().Err(err).Msg("note deletion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete note."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted."})
}
