package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"expensetracker/internal/log"
	"expensetracker/internal/model"
)

// Models lists every persisted model in migration order.
var Models = []interface{}{
	&model.User{},
	&model.Category{},
	&model.Expense{},
	&model.Budget{},
}

// Open returns a connected GORM DB instance for the given driver. Queries are
// logged through logger; a nil logger silences GORM.
func Open(driver, dsn string, logger *log.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	queryLog := gormlogger.Discard
	if logger != nil {
		queryLog = NewQueryLogger(logger)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Unique-index violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
		// Expenses keep their category id after the category is deleted.
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   queryLog,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table in reverse migration order.
func Reset(db *gorm.DB) error {
	for i := len(Models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(Models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
