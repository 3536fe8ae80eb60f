package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tenderdesk/api/internal/ids"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
)

type tenderResponse struct {
	ID          string              `json:"id"`
	Reference   string              `json:"reference"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	BudgetCents int64               `json:"budgetCents"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	Status      models.TenderStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func toTenderResponse(t models.Tender) tenderResponse {
	return tenderResponse{
		ID:          t.ID,
		Reference:   t.Reference,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		BudgetCents: t.BudgetCents,
		Deadline:    t.Deadline,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (h HandlerSet) ListTenders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	status := models.TenderStatus(c.Query("status"))

	tenders, err := h.tenders.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("tender listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list tenders."})
		return
	}

	resp := make([]tenderResponse, 0, len(tenders))
	for _, t := range tenders {
		resp = append(resp, toTenderResponse(t))
	}

	c.JSON(http.StatusOK, gin.H{"tenders": resp})
}

func (h HandlerSet) GetTender(c *gin.Context) {
	tender, err := h.tenders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTenderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tender not found."})
			return
		}
		h.log.Error().Err(err).Msg("tender lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load tender."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tender": toTenderResponse(tender)})
}

type tenderRequest struct {
	Reference   string     `json:"reference" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	BudgetCents int64      `json:"budgetCents"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
}

func (req tenderRequest) status() (models.TenderStatus, bool) {
	if req.Status == "" {
		return models.TenderStatusDraft, true
	}
	status := models.TenderStatus(req.Status)
	switch status {
	case models.TenderStatusOpen, models.TenderStatusClosed, models.TenderStatusDraft:
		return status, true
	}
	return "", false
}

func (h HandlerSet) AdminCreateTender(c *gin.Context) {
	var req tenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reference and title are required."})
		return
	}

	status, ok := req.status()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of: open, closed, draft."})
		return
	}

	tender := models.Tender{
		ID:          ids.New(),
		Reference:   strings.TrimSpace(req.Reference),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		BudgetCents: req.BudgetCents,
		Deadline:    req.Deadline,
		Status:      status,
	}

	if err := h.tenders.Create(c.Request.Context(), tender); err != nil {
		h.log.Error().Err(err).Msg("tender creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create tender."})
		return
	}

	created, err := h.tenders.GetByID(c.Request.Context(), tender.ID)
	if err != nil {
		c.JSON(http.StatusCreated, gin.H{"tender": toTenderResponse(tender)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tender": toTenderResponse(created)})
}

func (h HandlerSet) AdminUpdateTender(c *gin.Context) {
	var req tenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reference and title are required."})
		return
	}

	status, ok := req.status()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of: open, closed, draft."})
		return
	}

	tender := models.Tender{
		ID:          c.Param("id"),
		Reference:   strings.TrimSpace(req.Reference),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		BudgetCents: req.BudgetCents,
		Deadline:    req.Deadline,
		Status:      status,
	}

	updated, err := h.tenders.Update(c.Request.Context(), tender)
	if err != nil {
		if errors.Is(err, repository.ErrTenderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tender not found."})
			return
		}
		h.log.Error().Err(err).Msg("tender update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update tender."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tender": toTenderResponse(updated)})
}

func (h HandlerSet) AdminDeleteTender(c *gin.Context) {
	if err := h.tenders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrTenderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tender not found."})
			return
		}
		h.log.Error().Err(err).Msg("tender deletion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete tender."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tender deleted."})
}
