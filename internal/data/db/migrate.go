package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/domain/rows"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(rows.All()...)
}

// EnsureIndexes adds composite and driver specific indexes that struct tags
// cannot express.
func EnsureIndexes(db *gorm.DB, driver string) error {
	stmts := []struct{ name, sql string }{
		{"idx_part_link_parent_position", `CREATE INDEX IF NOT EXISTS idx_part_link_parent_position ON part_link (parent_id, position);`},
		{"idx_product_recipe_product_class", `CREATE INDEX IF NOT EXISTS idx_product_recipe_product_class ON product_recipe (product_id, classification);`},
	}
	if driver == DriverPostgres {
		stmts = append(stmts, struct{ name, sql string }{
			"idx_product_type_columns",
			`CREATE INDEX IF NOT EXISTS idx_product_type_columns ON product_type USING GIN (columns);`,
		})
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating product tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureIndexes(s.db, s.driver); err != nil {
		s.log.Error("Index migration failed", "error", err)
		return err
	}
	return nil
}
