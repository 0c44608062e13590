// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tomtom215/reelrec/internal/metrics"
)

// userRow is the user_profiles table.
type userRow struct {
	ID        string `gorm:"primaryKey;size:128"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRow) TableName() string { return "user_profiles" }

// watchRow is the watch_history table. Position preserves insertion order.
type watchRow struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:128;not null;uniqueIndex:idx_watch_user_item"`
	ItemID    string `gorm:"size:64;not null;uniqueIndex:idx_watch_user_item"`
	CreatedAt time.Time
}

func (watchRow) TableName() string { return "watch_history" }

// SQLStore keeps profiles in Postgres through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenPostgresStore connects to dsn and migrates the schema.
func OpenPostgresStore(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return NewSQLStore(db)
}

// NewSQLStore wraps an open gorm handle and migrates the schema.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&userRow{}, &watchRow{}); err != nil {
		return nil, fmt.Errorf("migrate user tables: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func loadProfile(tx *gorm.DB, id string) (*UserProfile, error) {
	var user userRow
	err := tx.Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var rows []watchRow
	if err := tx.Where("user_id = ?", id).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get watch history: %w", err)
	}

	p := &UserProfile{ID: user.ID, WatchHistory: make([]string, len(rows))}
	for i := range rows {
		p.WatchHistory[i] = rows[i].ItemID
	}
	return p, nil
}

// FindByID implements Store.
func (s *SQLStore) FindByID(ctx context.Context, id string) (*UserProfile, error) {
	p, err := loadProfile(s.db.WithContext(ctx), id)
	switch {
	case errors.Is(err, ErrUserNotFound):
		metrics.RecordUserLookup("postgres", "miss")
	case err != nil:
		metrics.RecordUserLookup("postgres", "error")
	default:
		metrics.RecordUserLookup("postgres", "hit")
	}
	return p, err
}

// Save implements Store, replacing the stored history.
func (s *SQLStore) Save(ctx context.Context, profile *UserProfile) error {
	p, err := normalizeProfile(profile)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := userRow{ID: p.ID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Create(&user).Error; err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		if err := tx.Where("user_id = ?", p.ID).Delete(&watchRow{}).Error; err != nil {
			return fmt.Errorf("clear watch history: %w", err)
		}
		if len(p.WatchHistory) == 0 {
			return nil
		}
		rows := make([]watchRow, len(p.WatchHistory))
		for i, itemID := range p.WatchHistory {
			rows[i] = watchRow{UserID: p.ID, ItemID: itemID}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert watch history: %w", err)
		}
		return nil
	})
}

// AddWatched implements Store. The unique (user_id, item_id) index makes the
// insert idempotent.
func (s *SQLStore) AddWatched(ctx context.Context, userID, itemID string) (*UserProfile, error) {
	var updated *UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userRow{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if count == 0 {
			return ErrUserNotFound
		}
		row := watchRow{UserID: userID, ItemID: itemID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("insert watch history: %w", err)
		}
		p, err := loadProfile(tx, userID)
		updated = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
