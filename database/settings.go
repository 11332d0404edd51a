package database

import (
	"context"
	"errors"
	"strings"

	"versioninfo/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errEmptyKey = errors.New("empty setting key")

// SettingsStore persists key/value options in the app_settings table.
type SettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore returns a store backed by db.
func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns a persisted key/value setting.
// ok is false when the key does not exist.
func (s *SettingsStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	if s == nil || s.db == nil {
		return "", false, errors.New("database not initialized")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errEmptyKey
	}

	var setting models.AppSetting
	if err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set persists a key/value setting, replacing any previous value.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	if s == nil || s.db == nil {
		return errors.New("database not initialized")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errEmptyKey
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.AppSetting{Key: key, Value: strings.TrimSpace(value)}).Error
}

// Delete removes a persisted setting if it exists.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return errors.New("database not initialized")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errEmptyKey
	}

	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.AppSetting{}).Error
}
