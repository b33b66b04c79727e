package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	logging "github.com/artifig/tehnopal/internal/logging"
)

// Open initializes the embedded cache database. It is the device-local
// analogue of the browser's local storage: a disposable, re-derivable
// shadow of the in-progress answers, never the durable copy.
func Open(path string, log *zap.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create cache directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open answer cache: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate answer cache: %w", err)
	}

	log.Info("Answer cache opened", zap.String("path", path))
	return db, nil
}
