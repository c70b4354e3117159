package controller

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"mailprobe/config"
	"mailprobe/models"
	"mailprobe/utils"
	"mailprobe/verifier"
)

// Engine holds the process-wide verifier. It is built once at startup
// and swapped atomically when the proxy set changes; requests only ever
// take the read lock, so the rotation state is shared across all
// concurrent verifications instead of being rebuilt per request.
type Engine struct {
	DB     *gorm.DB
	Logger *log.Logger

	mu          sync.RWMutex
	v           *verifier.Verifier
	fingerprint string
}

func NewEngine(db *gorm.DB, logger *log.Logger) (*Engine, error) {
	e := &Engine{DB: db, Logger: logger}

	cfg, fingerprint, err := e.buildConfig()
	if err != nil {
		return nil, err
	}
	v, err := verifier.New(cfg)
	if err != nil {
		return nil, err
	}

	e.v = v
	e.fingerprint = fingerprint
	return e, nil
}

// Verifier returns the current engine instance.
func (e *Engine) Verifier() *verifier.Verifier {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.v
}

// Reload rebuilds the verifier from the database. When the proxy set and
// pool policy are unchanged the current instance is kept, preserving the
// rotation cursor.
func (e *Engine) Reload() error {
	cfg, fingerprint, err := e.buildConfig()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if fingerprint == e.fingerprint {
		e.Logger.Println("Proxy set unchanged, keeping current engine")
		return nil
	}

	v, err := verifier.New(cfg)
	if err != nil {
		return err
	}
	e.v = v
	e.fingerprint = fingerprint
	e.Logger.Printf("Engine rebuilt with %d proxies", len(cfg.Proxies))
	return nil
}

// buildConfig assembles the verifier configuration from the environment
// and the stored proxies, and fingerprints the parts whose change
// requires a rebuild.
func (e *Engine) buildConfig() (verifier.Config, string, error) {
	app := config.AppConfig

	methods, err := strategyMethods(app.ProviderStrategies)
	if err != nil {
		return verifier.Config{}, "", err
	}

	var rows []models.Proxy
	if err := e.DB.Where("is_active = ?", true).Order("label").Find(&rows).Error; err != nil {
		return verifier.Config{}, "", fmt.Errorf("loading proxies: %w", err)
	}

	pinned := make(map[string]bool)
	for _, m := range methods {
		if m.ProxyID != "" {
			pinned[m.ProxyID] = true
		}
	}

	proxies := make(map[string]*verifier.Proxy)
	hasher := sha256.New()
	for _, row := range rows {
		// With rotation on, only pool members, pin targets and the
		// default slot reach the engine; everything in the engine's map
		// takes part in rotation.
		if app.ProxyPoolEnabled && !row.InPool &&
			row.Label != models.DefaultProxyLabel && !pinned[row.Label] {
			continue
		}

		password, err := utils.Decrypt(row.Password)
		if err != nil {
			return verifier.Config{}, "", fmt.Errorf("decrypting password for proxy %q: %w", row.Label, err)
		}
		proxies[row.Label] = &verifier.Proxy{
			Host:     row.Host,
			Port:     row.Port,
			Username: row.Username,
			Password: password,
			Timeout:  time.Duration(row.TimeoutSeconds) * time.Second,
		}
		fmt.Fprintf(hasher, "%s|%s|%d|%s|%s|%d|%t\n",
			row.Label, row.Host, row.Port, row.Username, row.Password, row.TimeoutSeconds, row.InPool)
	}
	fmt.Fprintf(hasher, "pool|%t|%s\n", app.ProxyPoolEnabled, app.ProxyRotation)

	cfg := verifier.Config{
		FromEmail:      app.FromEmail,
		HelloName:      app.HelloName,
		SMTPPort:       app.SMTPPort,
		ConnectTimeout: app.ConnectTimeout,
		CommandTimeout: app.SMTPTimeout,
		SkipCatchAll:   !app.VerifyCatchAll,
		Methods:        methods,
		Proxies:        proxies,
		Pool: verifier.PoolPolicy{
			Enabled:  app.ProxyPoolEnabled && len(proxies) > 0,
			Strategy: verifier.PoolStrategy(app.ProxyRotation),
		},
	}

	return cfg, hex.EncodeToString(hasher.Sum(nil)), nil
}

// strategyMethods translates PROVIDER_STRATEGY_* values into engine
// methods. A value is "kind" or "kind@proxyLabel" to pin the provider to
// one proxy, e.g. "smtp@emea".
func strategyMethods(strategies map[string]string) (map[verifier.Provider]verifier.Method, error) {
	known := map[string]verifier.Provider{
		"gmail":       verifier.Gmail,
		"hotmail_b2b": verifier.HotmailB2B,
		"hotmail_b2c": verifier.HotmailB2C,
		"yahoo":       verifier.Yahoo,
		"mimecast":    verifier.Mimecast,
		"proofpoint":  verifier.Proofpoint,
		"default":     verifier.EverythingElse,
	}

	methods := make(map[verifier.Provider]verifier.Method)
	for name, spec := range strategies {
		provider, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q in strategy configuration", name)
		}

		kindSpec, proxyID := spec, ""
		if at := strings.Index(spec, "@"); at >= 0 {
			kindSpec, proxyID = spec[:at], spec[at+1:]
			if proxyID == "" {
				return nil, fmt.Errorf("strategy %q for provider %s names no proxy", spec, provider)
			}
		}
		methods[provider] = verifier.Method{
			Kind:    verifier.ParseMethodKind(kindSpec),
			ProxyID: proxyID,
		}
	}
	return methods, nil
}

