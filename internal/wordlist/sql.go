package wordlist

import (
	"context"
	"errors"
	"time"

	"ingredient-scanner/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// wordListRecord is one persisted list.
type wordListRecord struct {
	Key       string `gorm:"primaryKey;size:64"`
	Phrases   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (wordListRecord) TableName() string { return "word_lists" }

// SQLStore keeps lists in a word_lists table, one row per key, with the
// phrases column holding the JSON array.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens a PostgreSQL connection and migrates the table.
func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, domain.StorageFailure("open database", err)
	}
	return NewSQLStoreFromDB(db)
}

// NewSQLStoreFromDB wraps an open gorm handle and migrates the table.
func NewSQLStoreFromDB(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&wordListRecord{}); err != nil {
		return nil, domain.StorageFailure("migrate word_lists", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]string, bool, error) {
	var rec wordListRecord
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.StorageFailure("select "+key, err)
	}
	phrases, err := DecodePhrases(rec.Phrases)
	if err != nil {
		return nil, false, err
	}
	return phrases, true, nil
}

func (s *SQLStore) Save(ctx context.Context, key string, phrases []string) error {
	raw, err := EncodePhrases(phrases)
	if err != nil {
		return err
	}
	rec := wordListRecord{Key: key, Phrases: raw, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"phrases", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return domain.StorageFailure("upsert "+key, err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&wordListRecord{}).Error; err != nil {
		return domain.StorageFailure("delete "+key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
