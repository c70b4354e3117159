package models

import (
	"fmt"

	"gorm.io/gorm"
)

// ProxySeed is one entry of the PROXIES environment variable, used to
// populate the pool on first boot.
type ProxySeed struct {
	Label          string `json:"label"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	InPool         *bool  `json:"in_pool"`
}

// SeedProxies inserts the configured proxies that do not exist yet.
// Existing labels are left untouched so runtime edits survive restarts.
// Passwords go through encrypt before they are stored.
func SeedProxies(db *gorm.DB, seeds []ProxySeed, encrypt func(string) (string, error)) error {
	for _, seed := range seeds {
		if seed.Label == "" || seed.Host == "" || seed.Port == 0 {
			return fmt.Errorf("proxy seed needs label, host and port: %+v", seed)
		}

		password, err := encrypt(seed.Password)
		if err != nil {
			return fmt.Errorf("encrypting password for proxy %q: %w", seed.Label, err)
		}

		inPool := true
		if seed.InPool != nil {
			inPool = *seed.InPool
		}

		proxy := Proxy{
			Label:          seed.Label,
			Host:           seed.Host,
			Port:           seed.Port,
			Username:       seed.Username,
			Password:       password,
			TimeoutSeconds: seed.TimeoutSeconds,
			InPool:         inPool,
			IsActive:       true,
		}
		if err := db.FirstOrCreate(&proxy, "label = ?", proxy.Label).Error; err != nil {
			return fmt.Errorf("seeding proxy %q: %w", proxy.Label, err)
		}
	}
	return nil
}

// SeedAPIKey inserts the bootstrap API key unless one with the same
// prefix already exists.
func SeedAPIKey(db *gorm.DB, name, prefix, keyHash string) error {
	key := APIKey{
		Name:     name,
		Prefix:   prefix,
		KeyHash:  keyHash,
		IsActive: true,
	}
	if err := db.FirstOrCreate(&key, "prefix = ?", prefix).Error; err != nil {
		return fmt.Errorf("seeding API key %q: %w", name, err)
	}
	return nil
}
