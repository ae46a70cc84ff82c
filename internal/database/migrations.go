package database

import (
	"log"

	"gorm.io/gorm"
)

// cleanupDuplicatePriceHistory removes duplicate capture rows before the
// unique (card_id, run_id) index is added. Databases written before the
// index existed can hold several rows for the same card and run.
func cleanupDuplicatePriceHistory(db *gorm.DB) error {
	if !db.Migrator().HasTable("price_history") {
		return nil // No table, no duplicates to clean
	}
	if !db.Migrator().HasColumn("price_history", "run_id") {
		return nil // Pre-run-id schema; AutoMigrate adds the column first
	}

	// Keep the newest row of each (card, run) group
	result := db.Exec(`
		DELETE FROM price_history
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM price_history
			GROUP BY card_id, run_id
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d duplicate price_history entries", result.RowsAffected)
	}

	return nil
}

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	return backfillUnknownRarity(db)
}

// backfillUnknownRarity normalizes legacy card rows imported before the
// rarity sentinel existed. Safe to run repeatedly.
func backfillUnknownRarity(db *gorm.DB) error {
	if !db.Migrator().HasTable("cards") {
		return nil
	}

	result := db.Exec(`UPDATE cards SET rarity = 'Unknown' WHERE rarity IS NULL OR rarity = ''`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Backfilled rarity on %d card rows", result.RowsAffected)
	}
	return nil
}
