package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
	"github.com/drewfoos/pokeshelf/backend/internal/sync"
)

// SyncHandler exposes the sync engine to admin callers. Authorization is the
// deployment's job (reverse proxy); these handlers assume the caller is
// already trusted.
type SyncHandler struct {
	syncer *sync.Syncer
	worker *sync.PriceWorker
}

func NewSyncHandler(syncer *sync.Syncer, worker *sync.PriceWorker) *SyncHandler {
	return &SyncHandler{syncer: syncer, worker: worker}
}

func (h *SyncHandler) SyncSets(c *gin.Context) {
	result, err := h.syncer.SyncSets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"count":          result.Count,
		"failed":         result.Failed,
		"failed_set_ids": result.FailedSetIDs,
	})
}

func (h *SyncHandler) SyncNewSets(c *gin.Context) {
	result, err := h.syncer.SyncNewSets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"count":         result.Count,
		"imported_sets": result.Imported,
	})
}

func (h *SyncHandler) SyncSetCards(c *gin.Context) {
	setID := c.Param("id")
	result, err := h.syncer.SyncSetCards(c.Request.Context(), setID)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, pokemontcg.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"count":           result.Count,
		"failed":          result.Failed,
		"failed_card_ids": result.FailedCardIDs,
	})
}

type refreshPricesRequest struct {
	CardIDs []string `json:"card_ids"`
}

func (h *SyncHandler) RefreshPrices(c *gin.Context) {
	var req refreshPricesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	result, err := h.syncer.UpdateCardPrices(c.Request.Context(), req.CardIDs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": result.Count})
}

func (h *SyncHandler) PriceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.Status())
}
