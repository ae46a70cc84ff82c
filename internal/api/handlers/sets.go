package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drewfoos/pokeshelf/backend/internal/database"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
)

type SetHandler struct{}

func NewSetHandler() *SetHandler {
	return &SetHandler{}
}

func (h *SetHandler) GetSets(c *gin.Context) {
	db := database.GetDB()

	var sets []models.Set
	query := db.Order("release_date DESC")
	if series := c.Query("series"); series != "" {
		query = query.Where("series = ?", series)
	}

	if err := query.Find(&sets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sets": sets, "count": len(sets)})
}

func (h *SetHandler) GetSet(c *gin.Context) {
	db := database.GetDB()

	var set models.Set
	if err := db.First(&set, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "set not found"})
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *SetHandler) GetSetCards(c *gin.Context) {
	db := database.GetDB()

	var cards []models.Card
	if err := db.Where("set_id = ?", c.Param("id")).Order("id").Find(&cards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards, "count": len(cards)})
}
