package models

import "time"

// AppSetting stores small persistent key/value settings.
// Display preferences and other options registered with the host live here.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
