package db

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/pkg/logging"
)

// allModels lists every table in dependency order.
var allModels = []interface{}{
	&models.Category{},
	&models.Rule{},
	&models.CrossReference{},
	&models.Announcement{},
	&models.StaffUser{},
	&models.ActivityLog{},
}

// additiveMigration is a column added after the initial schema release.
// Re-running these must be a no-op; the HasColumn check makes that structural
// rather than relying on backend-specific duplicate-column error text.
type additiveMigration struct {
	model interface{}
	field string
}

var additiveMigrations = []additiveMigration{
	{&models.Rule{}, "Images"},
	{&models.Rule{}, "ReviewNotes"},
	{&models.Rule{}, "ReviewedAt"},
	{&models.Announcement{}, "AnnouncementType"},
	{&models.Announcement{}, "ScheduledFor"},
	{&models.Announcement{}, "AutoExpireHours"},
	{&models.Announcement{}, "PublishedAt"},
	{&models.StaffUser{}, "DiscordID"},
	{&models.StaffUser{}, "LastLogin"},
	{&models.Category{}, "Color"},
	{&models.Category{}, "OrderIndex"},
}

// Migrate applies the base schema and the additive column migrations.
// Base schema failure is fatal; a failed additive migration is logged and
// skipped so repeated deployments stay idempotent.
func Migrate(d *DB) error {
	log := logging.WithComponent("migrations")

	if err := d.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("failed to apply base schema: %w", err)
	}

	migrator := d.Migrator()
	for _, m := range additiveMigrations {
		if migrator.HasColumn(m.model, m.field) {
			continue
		}
		if err := migrator.AddColumn(m.model, m.field); err != nil {
			log.Warn("Additive migration failed, continuing",
				zap.String("field", m.field), zap.Error(err))
			continue
		}
		log.Info("Added column", zap.String("field", m.field))
	}

	log.Info("Schema migrations complete")
	return nil
}
