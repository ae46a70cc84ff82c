package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drewfoos/pokeshelf/backend/internal/api/handlers"
	"github.com/drewfoos/pokeshelf/backend/internal/config"
	"github.com/drewfoos/pokeshelf/backend/internal/sync"
)

func SetupRouter(cfg *config.Config, syncer *sync.Syncer, priceWorker *sync.PriceWorker) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	setHandler := handlers.NewSetHandler()
	cardHandler := handlers.NewCardHandler()
	collectionHandler := handlers.NewCollectionHandler()
	syncHandler := handlers.NewSyncHandler(syncer, priceWorker)

	// API routes
	api := router.Group("/api")
	{
		sets := api.Group("/sets")
		{
			sets.GET("", setHandler.GetSets)
			sets.GET("/:id", setHandler.GetSet)
			sets.GET("/:id/cards", setHandler.GetSetCards)
		}

		cards := api.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/:id", cardHandler.GetCard)
			cards.GET("/:id/history", cardHandler.GetCardHistory)
		}

		collection := api.Group("/collection")
		{
			collection.GET("", collectionHandler.GetCollection)
			collection.POST("", collectionHandler.AddToCollection)
			collection.PUT("/:id", collectionHandler.UpdateCollectionItem)
			collection.DELETE("/:id", collectionHandler.DeleteCollectionItem)
			collection.GET("/stats", collectionHandler.GetStats)
			collection.GET("/value-history", collectionHandler.GetValueHistory)
		}

		// Admin sync surface. Authorization happens in front of this
		// service; see deployment notes.
		admin := api.Group("/admin")
		{
			admin.POST("/sync/sets", syncHandler.SyncSets)
			admin.POST("/sync/new-sets", syncHandler.SyncNewSets)
			admin.POST("/sync/sets/:id/cards", syncHandler.SyncSetCards)
			admin.POST("/prices/refresh", syncHandler.RefreshPrices)
			admin.GET("/prices/status", syncHandler.PriceStatus)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
