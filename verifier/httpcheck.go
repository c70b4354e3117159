package verifier

import (
	"context"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/proxy"
)

const (
	httpCheckTimeout = 20 * time.Second
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// httpClient builds the client the API strategies use. HTTP checks route
// through the same proxy resolution as the SMTP path, so a provider
// pinned to a proxy keeps that egress for its API flow too. A cookie jar
// is always attached; the Yahoo flow depends on it.
func (v *Verifier) httpClient(px *Proxy) (*http.Client, error) {
	transport := &http.Transport{}
	if px != nil {
		var auth *proxy.Auth
		if px.Username != "" && px.Password != "" {
			auth = &proxy.Auth{User: px.Username, Password: px.Password}
		}
		dialer, err := proxy.SOCKS5("tcp", px.Addr(), auth, proxy.Direct)
		if err != nil {
			return nil, decodeSocksError(err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   httpCheckTimeout,
	}, nil
}
