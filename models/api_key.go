package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey represents one client credential. Only the bcrypt hash is
// stored; the prefix narrows the lookup before the hash comparison.
type APIKey struct {
	gorm.Model
	Name     string     `gorm:"not null" json:"name"`
	Prefix   string     `gorm:"index;not null" json:"prefix"`
	KeyHash  string     `gorm:"not null" json:"-"`
	LastUsed *time.Time `json:"last_used"`
	IsActive bool       `gorm:"default:true" json:"is_active"`
}
