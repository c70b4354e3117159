package verifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"time"
)

const (
	defaultFromEmail      = "noreply@mailprobe.email"
	defaultHelloName      = "verify.mailprobe.email"
	defaultSMTPPort       = 25
	defaultConnectTimeout = 5 * time.Second
	defaultCommandTimeout = 10 * time.Second
)

// Config controls one verification engine. The zero value works: direct
// connections, default strategies, catch-all detection on.
type Config struct {
	// FromEmail is the MAIL FROM address used in probes.
	FromEmail string
	// HelloName is the hostname announced in EHLO/HELO.
	HelloName string
	// SMTPPort is the target port for probes, normally 25.
	SMTPPort int
	// ConnectTimeout bounds TCP/SOCKS connection establishment.
	ConnectTimeout time.Duration
	// CommandTimeout bounds each SMTP command round trip.
	CommandTimeout time.Duration
	// SkipCatchAll disables the second probe with a random local part.
	SkipCatchAll bool
	// Methods overrides per-provider strategies; unset providers keep
	// the defaults from DefaultMethods.
	Methods map[Provider]Method
	// Proxies is the pool, keyed by stable ID. The ID "default" is the
	// fallback slot for checks that neither pin nor rotate.
	Proxies map[string]*Proxy
	// Pool enables rotation across the whole pool for checks without a
	// provider-pinned proxy.
	Pool PoolPolicy
	// Resolver is the DNS dependency; nil means net.DefaultResolver.
	Resolver MXResolver
	// IPServices overrides the endpoints used to discover the outbound
	// public IP for the "local:" connection descriptor.
	IPServices []string
}

// Verifier runs deliverability checks. It is safe for concurrent use;
// construct one per proxy-pool configuration and share it.
type Verifier struct {
	cfg      Config
	methods  map[Provider]Method
	proxies  map[string]*Proxy
	rotator  *Rotator
	resolver MXResolver
	mxCache  *mxCache
	publicIP *publicIPCache
}

// New validates the configuration and builds an engine. Provider methods
// that pin a proxy must reference an existing pool ID.
func New(cfg Config) (*Verifier, error) {
	if cfg.FromEmail == "" {
		cfg.FromEmail = defaultFromEmail
	}
	if cfg.HelloName == "" {
		cfg.HelloName = defaultHelloName
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = defaultSMTPPort
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}

	proxies := make(map[string]*Proxy, len(cfg.Proxies))
	for id, px := range cfg.Proxies {
		if px == nil {
			return nil, fmt.Errorf("proxy %q is nil", id)
		}
		if px.Host == "" || px.Port == 0 {
			return nil, fmt.Errorf("proxy %q needs host and port", id)
		}
		proxies[id] = px
	}

	methods := DefaultMethods()
	for p, m := range cfg.Methods {
		methods[p] = m
	}
	for p, m := range methods {
		if m.ProxyID == "" {
			continue
		}
		if _, ok := proxies[m.ProxyID]; !ok {
			return nil, fmt.Errorf("provider %s references unknown proxy %q", p, m.ProxyID)
		}
	}

	// The rotation order is fixed at construction: every pool ID, sorted,
	// the "default" slot included.
	var rotator *Rotator
	if cfg.Pool.Enabled && len(proxies) > 0 {
		ids := make([]string, 0, len(proxies))
		for id := range proxies {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		rotator = NewRotator(ids, cfg.Pool.Strategy)
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	return &Verifier{
		cfg:      cfg,
		methods:  methods,
		proxies:  proxies,
		rotator:  rotator,
		resolver: resolver,
		mxCache:  newMXCache(),
		publicIP: newPublicIPCache(cfg.IPServices),
	}, nil
}

// Verify checks one address end to end: syntax, MX, heuristics, then the
// provider strategy. It never returns an error; every failure mode folds
// into the result's verdict and reason.
func (v *Verifier) Verify(ctx context.Context, email string) *Result {
	start := time.Now()
	res := &Result{
		Input:  email,
		Syntax: parseSyntax(email),
	}
	res.Debug.StartTime = start
	defer func() {
		res.Debug.EndTime = time.Now()
		res.Debug.DurationMs = res.Debug.EndTime.Sub(start).Milliseconds()
	}()

	if !res.Syntax.IsValid {
		res.Verdict, res.Reason = VerdictInvalid, "Invalid: email syntax is invalid"
		return res
	}

	hosts, err := v.lookupMX(ctx, res.Syntax.Domain)
	if err != nil {
		if errors.Is(err, errNoMXRecords) {
			res.Verdict, res.Reason = VerdictInvalid, "Invalid: no MX records found for domain"
		} else {
			res.Verdict, res.Reason = VerdictUnknown, fmt.Sprintf("Unknown: MX lookup failed - %v", err)
		}
		return res
	}
	res.MX = MXDetails{AcceptsMail: true, Records: hosts}
	res.Misc = checkMisc(&res.Syntax)

	provider := ClassifyProvider(hosts[0])
	method := v.methodFor(provider)
	res.Debug.Provider = string(provider)
	res.Debug.Strategy = method.Kind.String()

	// Skipped checks never touch the network: no proxy is drawn from the
	// pool and no connection is reported.
	var px *Proxy
	if method.Kind != MethodSkip {
		px = v.resolveProxy(method)
		if px != nil {
			res.Debug.Connection = px.ConnectionDescriptor()
		} else {
			res.Debug.Connection = v.publicIP.descriptor()
		}
	}

	smtp, smtpErr := v.dispatch(ctx, res, provider, method, hosts[0], px)
	res.SMTP = smtp

	res.Verdict, res.Reason = calculateVerdict(res.Misc, smtp, smtpErr)
	return res
}

// methodFor returns the strategy for a provider, falling back to the
// plain SMTP probe.
func (v *Verifier) methodFor(p Provider) Method {
	if m, ok := v.methods[p]; ok {
		return m
	}
	return Method{Kind: MethodSMTP}
}

// resolveProxy picks the egress for one check. Provider pins win, then
// pool rotation, then the "default" slot, then a direct connection.
func (v *Verifier) resolveProxy(m Method) *Proxy {
	if m.ProxyID != "" {
		return v.proxies[m.ProxyID]
	}
	if v.rotator != nil {
		if id, ok := v.rotator.Next(); ok {
			return v.proxies[id]
		}
	}
	return v.proxies[DefaultProxyID]
}

// dispatch runs the provider strategy. API strategies exist for Gmail,
// the two Microsoft tiers and Yahoo; any other provider configured for
// the API method degrades to the SMTP probe.
func (v *Verifier) dispatch(ctx context.Context, res *Result, provider Provider, method Method, mxHost string, px *Proxy) (SMTPDetails, error) {
	if method.Kind == MethodSkip {
		return SMTPDetails{}, &SkipError{Provider: provider}
	}
	if method.Kind == MethodHeadless {
		return SMTPDetails{}, &HeadlessError{Reason: "no webdriver endpoint configured"}
	}
	if method.Kind == MethodAPI {
		switch provider {
		case Gmail:
			return v.checkGmail(ctx, res.Syntax.Address, px)
		case HotmailB2C, HotmailB2B:
			return v.checkMicrosoft365(ctx, res.Syntax.Address, px)
		case Yahoo:
			return v.checkYahoo(ctx, res.Syntax.LocalPart, px)
		}
	}

	rep, err := v.probe(ctx, res.Syntax.Address, mxHost, px)
	res.Debug.Trace = append(res.Debug.Trace, rep.trace...)
	res.Debug.ErrorDesc = rep.errDesc
	smtp := rep.details
	if err != nil {
		return smtp, err
	}

	// Catch-all detection: an independent probe of a random local part on
	// the same exchange through the same egress. A failed or rejected
	// probe leaves IsCatchAll false; it never downgrades the primary
	// result.
	if smtp.IsDeliverable && !v.cfg.SkipCatchAll {
		rep2, err2 := v.probe(ctx, randomLocalPart()+"@"+res.Syntax.Domain, mxHost, px)
		switch {
		case err2 != nil:
			res.Debug.Trace = append(res.Debug.Trace, "catch-all probe: "+err2.Error())
		case rep2.details.IsDeliverable:
			smtp.IsCatchAll = true
			res.Debug.Trace = append(res.Debug.Trace, "catch-all probe: random local part accepted")
		default:
			res.Debug.Trace = append(res.Debug.Trace, "catch-all probe: random local part rejected")
		}
	}
	return smtp, nil
}
