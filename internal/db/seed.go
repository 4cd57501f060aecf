package db

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/pkg/logging"
)

// defaultCategories seeded on first startup.
var defaultCategories = []models.Category{
	{LetterCode: "A", Name: "General Conduct", Description: "Rules that apply everywhere on the server", Color: "#4f8cff", OrderIndex: 0, IsActive: true},
	{LetterCode: "B", Name: "Guard Rules", Description: "Rules for the guard team", Color: "#2ecc71", OrderIndex: 1, IsActive: true},
	{LetterCode: "C", Name: "Prisoner Rules", Description: "Rules for prisoners", Color: "#e67e22", OrderIndex: 2, IsActive: true},
	{LetterCode: "D", Name: "Warden Rules", Description: "Rules for the warden role", Color: "#9b59b6", OrderIndex: 3, IsActive: true},
}

// Seed inserts default data when the target tables are empty. Safe to run on
// every startup; non-empty tables are left untouched.
func Seed(d *DB) error {
	log := logging.WithComponent("seed")

	var categoryCount int64
	if err := d.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if categoryCount == 0 {
		// Multi-row seed runs inside one transaction (partial seeds are worse
		// than no seed at all)
		if err := d.Transaction(func(tx *gorm.DB) error {
			for _, cat := range defaultCategories {
				if err := tx.Create(&cat).Error; err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
		log.Info("Seeded default categories", zap.Int("count", len(defaultCategories)))
	}

	var announcementCount int64
	if err := d.Model(&models.Announcement{}).Count(&announcementCount).Error; err != nil {
		return fmt.Errorf("failed to count announcements: %w", err)
	}
	if announcementCount == 0 {
		welcome := models.Announcement{
			Title:            "Welcome to the PrisonRP Rules Wiki",
			Content:          "Read the rules before playing. Staff decisions are final.",
			Priority:         3,
			IsActive:         true,
			AnnouncementType: models.AnnouncementImmediate,
			ReviewState:      models.ReviewState{Status: models.StatusApproved},
		}
		if err := d.Create(&welcome).Error; err != nil {
			return fmt.Errorf("failed to seed welcome announcement: %w", err)
		}
		log.Info("Seeded welcome announcement")
	}

	var staffCount int64
	if err := d.Model(&models.StaffUser{}).Count(&staffCount).Error; err != nil {
		return fmt.Errorf("failed to count staff users: %w", err)
	}
	if staffCount == 0 {
		demo := []models.StaffUser{
			{SteamID: sql.NullString{String: "76561198000000001", Valid: true}, Username: "demo_owner", PermissionLevel: "owner", IsActive: true},
			{SteamID: sql.NullString{String: "76561198000000002", Valid: true}, Username: "demo_moderator", PermissionLevel: "moderator", IsActive: true},
		}
		for _, user := range demo {
			if err := d.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to seed staff users: %w", err)
			}
		}
		log.Info("Seeded demo staff accounts", zap.Int("count", len(demo)))
	}

	return nil
}
