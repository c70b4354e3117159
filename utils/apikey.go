package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// API keys look like mp_<prefix>_<secret>. The prefix is stored in clear
// and indexed so a request needs a single bcrypt comparison, not one per
// stored key.
const (
	apiKeyScheme = "mp"
	prefixLength = 8
)

// GenerateAPIKey returns a fresh key in clear text together with its
// prefix and bcrypt hash. The clear text is shown once and never stored.
func GenerateAPIKey() (key, prefix, hash string, err error) {
	raw := make([]byte, 30)
	if _, err = rand.Read(raw); err != nil {
		return "", "", "", err
	}

	// hex keeps the key free of the separator character
	encoded := hex.EncodeToString(raw)
	prefix = encoded[:prefixLength]
	key = fmt.Sprintf("%s_%s_%s", apiKeyScheme, prefix, encoded[prefixLength:])

	hash, err = HashAPIKey(key)
	if err != nil {
		return "", "", "", err
	}
	return key, prefix, hash, nil
}

// SplitAPIKey extracts the lookup prefix from a presented key. The
// secret part may itself contain underscores, so only the first two
// separators are structural.
func SplitAPIKey(key string) (prefix string, ok bool) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 || parts[0] != apiKeyScheme {
		return "", false
	}
	if len(parts[1]) != prefixLength || parts[2] == "" {
		return "", false
	}
	return parts[1], true
}

func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckAPIKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
