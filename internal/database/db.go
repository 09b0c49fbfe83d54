package database

import (
	"github.com/Baaaki/campus-market/internal/config"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Config is shared by the server and the test databases. TranslateError makes
// unique violations surface as gorm.ErrDuplicatedKey on every driver.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func Connect(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), Config())
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}

	logger.Log.Info("Database connected successfully")
}

func Migrate() {
	if err := AutoMigrate(DB); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	logger.Log.Info("Database migration completed")
}

// AutoMigrate creates or updates every table, parents before children.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Conversation{},
		&models.Message{},
		&models.Favorite{},
		&models.Activity{},
	)
}
