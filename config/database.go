package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/andrewpaige1/roadmap-api/models"
)

// Connect opens the configured database and migrates the schema.
func Connect(env *Environment, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch env.DBDriver {
	case "postgres":
		dialector = postgres.Open(env.DBURL)
	default:
		dialector = sqlite.Open(env.SQLitePath)
	}

	level := gormlogger.Warn
	if env.IsDevelopment {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", env.DBDriver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("database ready", zap.String("driver", env.DBDriver))
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.RoadmapHistory{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
