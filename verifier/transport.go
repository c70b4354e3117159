package verifier

import (
	"context"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// dialSMTP opens the TCP stream the probe speaks over, either directly or
// through the resolved SOCKS5 proxy. Both paths are bounded by the
// connect timeout; the proxied path decodes handshake and reply failures
// into SocksError.
func (v *Verifier) dialSMTP(ctx context.Context, px *Proxy, host string, port int) (net.Conn, error) {
	target := net.JoinHostPort(host, strconv.Itoa(port))

	if px == nil {
		d := net.Dialer{Timeout: v.cfg.ConnectTimeout}
		conn, err := d.DialContext(ctx, "tcp", target)
		if err != nil {
			if isTimeout(err) {
				return nil, &TimeoutError{After: v.cfg.ConnectTimeout}
			}
			return nil, &ConnectError{Err: err}
		}
		return conn, nil
	}

	var auth *proxy.Auth
	if px.Username != "" && px.Password != "" {
		auth = &proxy.Auth{User: px.Username, Password: px.Password}
	}
	dialer, err := proxy.SOCKS5("tcp", px.Addr(), auth, proxy.Direct)
	if err != nil {
		return nil, decodeSocksError(err)
	}

	timeout := px.Timeout
	if timeout <= 0 {
		timeout = v.cfg.ConnectTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var conn net.Conn
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		conn, err = cd.DialContext(dctx, "tcp", target)
	} else {
		conn, err = dialer.Dial("tcp", target)
	}
	if err != nil {
		return nil, decodeSocksError(err)
	}
	return conn, nil
}

func isTimeout(err error) bool {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return true
	}
	return err == context.DeadlineExceeded
}

// stageDeadline bounds one protocol exchange, honoring an earlier
// caller-level context deadline when there is one.
func stageDeadline(ctx context.Context, d time.Duration) time.Time {
	deadline := time.Now().Add(d)
	if cd, ok := ctx.Deadline(); ok && cd.Before(deadline) {
		return cd
	}
	return deadline
}
