package verifier

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync"
	"time"
)

const (
	dnsTimeout = 5 * time.Second
	mxCacheTTL = 10 * time.Minute
)

// MXResolver is the DNS dependency of the engine. *net.Resolver satisfies
// it; tests inject fakes.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// errNoMXRecords distinguishes "domain has no MX" (Invalid) from a failed
// lookup (Unknown).
var errNoMXRecords = errors.New("no MX records found for domain")

type mxEntry struct {
	hosts   []string
	expires time.Time
}

type mxCache struct {
	mu      sync.RWMutex
	entries map[string]mxEntry
}

func newMXCache() *mxCache {
	return &mxCache{entries: make(map[string]mxEntry)}
}

func (c *mxCache) get(domain string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[domain]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.hosts, true
}

func (c *mxCache) put(domain string, hosts []string) {
	c.mu.Lock()
	c.entries[domain] = mxEntry{hosts: hosts, expires: time.Now().Add(mxCacheTTL)}
	c.mu.Unlock()
}

// lookupMX resolves a domain's exchanges ordered by preference. Successful
// lookups are cached; failures are not, so transient DNS trouble does not
// stick for the TTL.
func (v *Verifier) lookupMX(ctx context.Context, domain string) ([]string, error) {
	if hosts, ok := v.mxCache.get(domain); ok {
		return hosts, nil
	}

	lctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()

	records, err := v.resolver.LookupMX(lctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errNoMXRecords
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoMXRecords
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Pref < records[j].Pref })
	hosts := make([]string, 0, len(records))
	for _, r := range records {
		// A lone "." exchange is RFC 7505 null MX: the domain declares
		// it accepts no mail at all.
		if r.Host != "" && r.Host != "." {
			hosts = append(hosts, r.Host)
		}
	}
	if len(hosts) == 0 {
		return nil, errNoMXRecords
	}

	v.mxCache.put(domain, hosts)
	return hosts, nil
}
