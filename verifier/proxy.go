package verifier

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultProxyID is the pool slot used when neither a provider override
// nor rotation selects a proxy.
const DefaultProxyID = "default"

// Proxy describes a SOCKS5 egress endpoint. Proxies are identified by a
// stable string ID within the configured pool.
type Proxy struct {
	Host     string
	Port     int
	Username string
	Password string
	// Timeout overrides the engine connect timeout for this proxy.
	Timeout time.Duration
}

func (p *Proxy) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// ConnectionDescriptor renders the egress identity reported in results:
// "proxy:<host>:<port>" or "proxy:<host>:<port>@<username>:<password>".
func (p *Proxy) ConnectionDescriptor() string {
	if p.Username != "" && p.Password != "" {
		return fmt.Sprintf("proxy:%s:%d@%s:%s", p.Host, p.Port, p.Username, p.Password)
	}
	return fmt.Sprintf("proxy:%s:%d", p.Host, p.Port)
}

// PoolStrategy selects how the rotation pool hands out proxies.
type PoolStrategy string

const (
	RoundRobin PoolStrategy = "round_robin"
	Random     PoolStrategy = "random"
)

// PoolPolicy controls whether requests without a provider-specific proxy
// rotate through the pool, and with which strategy.
type PoolPolicy struct {
	Enabled  bool
	Strategy PoolStrategy
}
