package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drewfoos/pokeshelf/backend/internal/database"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
)

const (
	defaultSearchPageSize = 20
	maxSearchPageSize     = 100
)

type CardHandler struct{}

func NewCardHandler() *CardHandler {
	return &CardHandler{}
}

// SearchCards searches the locally synced catalog by card name.
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSearchPageSize)))
	if pageSize < 1 || pageSize > maxSearchPageSize {
		pageSize = defaultSearchPageSize
	}

	db := database.GetDB()
	like := "%" + query + "%"

	var total int64
	db.Model(&models.Card{}).Where("name LIKE ?", like).Count(&total)

	var cards []models.Card
	err := db.Where("name LIKE ?", like).
		Order("name").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&cards).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.CardSearchResult{
		Cards:      cards,
		TotalCount: int(total),
		HasMore:    int64(page*pageSize) < total,
	})
}

func (h *CardHandler) GetCard(c *gin.Context) {
	db := database.GetDB()

	var card models.Card
	if err := db.First(&card, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	c.JSON(http.StatusOK, card)
}

// GetCardHistory returns the price history series for one card, oldest first.
func (h *CardHandler) GetCardHistory(c *gin.Context) {
	db := database.GetDB()

	query := db.Where("card_id = ?", c.Param("id")).Order("captured_at ASC")
	if daysStr := c.Query("days"); daysStr != "" {
		if days, err := strconv.Atoi(daysStr); err == nil && days > 0 {
			query = query.Where("captured_at >= datetime('now', ?)", "-"+strconv.Itoa(days)+" days")
		}
	}

	var records []models.PriceHistoryRecord
	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": records, "count": len(records)})
}
