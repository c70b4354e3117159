package verifier

import (
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

const (
	publicIPTTL          = 5 * time.Minute
	publicIPFetchTimeout = 5 * time.Second
)

var defaultIPServices = []string{
	"https://api.ipify.org",
	"https://ifconfig.me/ip",
	"https://icanhazip.com",
	"https://ipecho.net/plain",
}

// publicIPCache resolves the process's outbound public IP for the
// "local:" connection descriptor. The value is cached for five minutes;
// concurrent cache misses collapse into one in-flight fetch.
type publicIPCache struct {
	services []string
	client   *fasthttp.Client
	ttl      time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	value     string
	fetchedAt time.Time
}

func newPublicIPCache(services []string) *publicIPCache {
	if len(services) == 0 {
		services = defaultIPServices
	}
	return &publicIPCache{
		services: services,
		client: &fasthttp.Client{
			ReadTimeout:  publicIPFetchTimeout,
			WriteTimeout: publicIPFetchTimeout,
		},
		ttl: publicIPTTL,
	}
}

// descriptor returns "local:<ip>", falling back to "local:<hostname>" and
// finally "local:unknown" when nothing answers.
func (c *publicIPCache) descriptor() string {
	c.mu.RLock()
	if c.value != "" && time.Since(c.fetchedAt) < c.ttl {
		v := c.value
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	v, _, _ := c.group.Do("public-ip", func() (interface{}, error) {
		// A waiter that queued behind the winning fetch finds the value
		// fresh again here and skips its own round of requests.
		c.mu.RLock()
		if c.value != "" && time.Since(c.fetchedAt) < c.ttl {
			v := c.value
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		desc := c.fetch()
		c.mu.Lock()
		c.value = desc
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return desc, nil
	})
	return v.(string)
}

func (c *publicIPCache) fetch() string {
	for _, svc := range c.services {
		ip, err := c.fetchOne(svc)
		if err == nil {
			return "local:" + ip
		}
	}
	if hn, err := os.Hostname(); err == nil && hn != "" {
		return "local:" + hn
	}
	return "local:unknown"
}

func (c *publicIPCache) fetchOne(url string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := c.client.DoTimeout(req, resp, publicIPFetchTimeout); err != nil {
		return "", err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("public IP service returned status %d", resp.StatusCode())
	}

	ip := strings.TrimSpace(string(resp.Body()))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("public IP service returned %q", ip)
	}
	return ip, nil
}
