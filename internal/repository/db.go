package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-manager/internal/model"
)

// NewDB opens a SQLite database and runs migrations.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "task_manager.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	if err := backfillTitleLower(db); err != nil {
		return nil, fmt.Errorf("backfill title_lower: %w", err)
	}

	return db, nil
}

// backfillTitleLower fills the folded title for rows written before the
// column existed.
func backfillTitleLower(db *gorm.DB) error {
	var tasks []model.Task
	if err := db.Select("id", "title").Where("title_lower = '' OR title_lower IS NULL").Find(&tasks).Error; err != nil {
		return err
	}
	for _, task := range tasks {
		err := db.Model(&model.Task{}).Where("id = ?", task.ID).
			UpdateColumn("title_lower", foldTitle(task.Title)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// IsMongoURI reports whether dsn addresses a MongoDB deployment.
func IsMongoURI(dsn string) bool {
	return strings.HasPrefix(dsn, "mongodb://") || strings.HasPrefix(dsn, "mongodb+srv://")
}

// SQLPinger checks the connection behind a gorm handle.
type SQLPinger struct {
	db *gorm.DB
}

func NewSQLPinger(db *gorm.DB) *SQLPinger {
	return &SQLPinger{db: db}
}

func (p *SQLPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
