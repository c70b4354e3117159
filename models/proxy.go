package models

import "gorm.io/gorm"

// DefaultProxyLabel designates the fallback proxy slot: checks that are
// neither pinned to a proxy nor served by pool rotation go through it.
const DefaultProxyLabel = "default"

// Proxy represents one SOCKS5 egress in the pool
type Proxy struct {
	gorm.Model
	Label string `gorm:"uniqueIndex;not null" json:"label"`
	Host  string `gorm:"not null" json:"host"`
	Port  int    `gorm:"not null" json:"port"`

	// Optional credentials; password is AES-encrypted at rest
	Username string `json:"username"`
	Password string `json:"-"`

	// TimeoutSeconds overrides the engine connect timeout, 0 keeps it
	TimeoutSeconds int `gorm:"default:0" json:"timeout_seconds"`

	InPool   bool `gorm:"default:true" json:"in_pool"`
	IsActive bool `gorm:"default:true" json:"is_active"`
}
