package verifier

import "strings"

// Provider is the mail-hosting category behind a domain, derived from its
// MX records. The category decides which verification strategy applies
// and whether a dedicated proxy is routed.
type Provider string

const (
	Gmail          Provider = "gmail"
	HotmailB2B     Provider = "hotmail_b2b"
	HotmailB2C     Provider = "hotmail_b2c"
	Yahoo          Provider = "yahoo"
	Mimecast       Provider = "mimecast"
	Proofpoint     Provider = "proofpoint"
	EverythingElse Provider = "everything_else"
)

// ClassifyProvider maps a resolved MX hostname to its provider. Rules are
// ordered most specific first; the first match wins and unmatched hosts
// fall through to EverythingElse. Pure string work, no I/O.
func ClassifyProvider(mxHost string) Provider {
	host := strings.ToLower(strings.TrimSpace(mxHost))
	if host == "" {
		return EverythingElse
	}
	if !strings.HasSuffix(host, ".") {
		host += "."
	}

	switch {
	case strings.HasSuffix(host, ".google.com."):
		return Gmail
	case strings.HasSuffix(host, ".olc.protection.outlook.com."):
		return HotmailB2C
	case strings.HasSuffix(host, ".protection.outlook.com."):
		return HotmailB2B
	case strings.HasSuffix(host, ".yahoodns.net."):
		return Yahoo
	case strings.HasSuffix(host, ".mimecast.com."):
		return Mimecast
	case strings.HasSuffix(host, ".pphosted.com."), strings.HasSuffix(host, ".ppe-hosted.com."):
		return Proofpoint
	default:
		return EverythingElse
	}
}
