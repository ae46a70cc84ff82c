package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drewfoos/pokeshelf/backend/internal/database"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
)

// Maximum quantity allowed per collection stack
const maxQuantity = 9999

type CollectionHandler struct{}

func NewCollectionHandler() *CollectionHandler {
	return &CollectionHandler{}
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	db := database.GetDB()

	var items []models.CollectionItem
	query := db.Preload("Card").Order("added_at DESC")

	if setID := c.Query("set_id"); setID != "" {
		query = query.Joins("JOIN cards ON cards.id = collection_items.card_id").
			Where("cards.set_id = ?", setID)
	}

	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *CollectionHandler) AddToCollection(c *gin.Context) {
	var req models.AddToCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	// The card must be synced before it can be collected
	var card models.Card
	if err := db.First(&card, "id = ?", req.CardID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card not found, sync its set first"})
		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}
	if quantity > maxQuantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity exceeds maximum allowed (9999)"})
		return
	}
	variant := req.Variant
	if variant == "" {
		variant = models.VariantNormal
	}
	condition := req.Condition
	if condition == "" {
		condition = models.ConditionNearMint
	}

	// Merge into an existing stack of the same card/variant/condition
	var existing models.CollectionItem
	err := db.Where("card_id = ? AND variant = ? AND condition = ?", req.CardID, variant, condition).
		First(&existing).Error
	if err == nil {
		existing.Quantity += quantity
		if err := db.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		db.Preload("Card").First(&existing, existing.ID)
		c.JSON(http.StatusOK, existing)
		return
	}

	item := models.CollectionItem{
		CardID:    req.CardID,
		Quantity:  quantity,
		Variant:   variant,
		Condition: condition,
		Notes:     req.Notes,
		AddedAt:   time.Now(),
	}
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	db.Preload("Card").First(&item, item.ID)
	c.JSON(http.StatusCreated, item)
}

func (h *CollectionHandler) UpdateCollectionItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection item id"})
		return
	}

	var req models.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var item models.CollectionItem
	if err := db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection item not found"})
		return
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 || *req.Quantity > maxQuantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity out of range"})
			return
		}
		item.Quantity = *req.Quantity
	}
	if req.Variant != nil {
		item.Variant = *req.Variant
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	db.Preload("Card").First(&item, item.ID)
	c.JSON(http.StatusOK, item)
}

func (h *CollectionHandler) DeleteCollectionItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection item id"})
		return
	}

	db := database.GetDB()

	result := db.Delete(&models.CollectionItem{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetValueHistory returns the daily collection value series, oldest first.
func (h *CollectionHandler) GetValueHistory(c *gin.Context) {
	db := database.GetDB()

	period := c.DefaultQuery("period", "month")
	query := db.Order("snapshot_date ASC")

	now := time.Now()
	switch period {
	case "week":
		query = query.Where("snapshot_date >= ?", now.AddDate(0, 0, -7))
	case "month":
		query = query.Where("snapshot_date >= ?", now.AddDate(0, -1, 0))
	case "year":
		query = query.Where("snapshot_date >= ?", now.AddDate(-1, 0, 0))
	case "all":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be week, month, year, or all"})
		return
	}

	var snapshots []models.CollectionValueSnapshot
	if err := query.Find(&snapshots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ValueHistoryResponse{Snapshots: snapshots, Period: period})
}

func (h *CollectionHandler) GetStats(c *gin.Context) {
	db := database.GetDB()

	var items []models.CollectionItem
	if err := db.Preload("Card").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats := models.CollectionStats{}
	uniqueCards := make(map[string]struct{})
	uniqueSets := make(map[string]struct{})
	for _, item := range items {
		stats.TotalCards += item.Quantity
		uniqueCards[item.CardID] = struct{}{}
		if item.Card.SetID != "" {
			uniqueSets[item.Card.SetID] = struct{}{}
		}
		stats.TotalValue += item.Variant.MarketValue(item.Card.TCGPlayer.Data()) * float64(item.Quantity)
	}
	stats.UniqueCards = len(uniqueCards)
	stats.SetsRepresented = len(uniqueSets)

	c.JSON(http.StatusOK, stats)
}
