package migrate

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
)

// Indexes gorm tags cannot express. Both statements are valid in Postgres and sqlite.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_table_sessions_active ON table_sessions (table_id) WHERE status = 'active'`,
}

// AutoMigrateModels creates or updates every model table plus the partial
// indexes, for sqlite databases and tests.
func AutoMigrateModels(conn *gorm.DB) error {
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}
