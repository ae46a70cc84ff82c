package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drewfoos/pokeshelf/backend/internal/models"
)

var DB *gorm.DB

func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Translated errors let the sync code classify duplicate price
		// history inserts via gorm.ErrDuplicatedKey instead of matching
		// driver message strings.
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	log.Println("Database connected successfully")

	// Runs BEFORE AutoMigrate so the unique capture index can be created
	// on databases that predate it.
	if err := cleanupDuplicatePriceHistory(DB); err != nil {
		return err
	}

	err = DB.AutoMigrate(
		&models.Set{},
		&models.Card{},
		&models.PriceHistoryRecord{},
		&models.CollectionItem{},
		&models.CollectionValueSnapshot{},
	)
	if err != nil {
		return err
	}

	if err := RunMigrations(DB); err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
