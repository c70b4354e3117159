package verifier

// MethodKind is the closed set of verification strategies.
type MethodKind int

const (
	// MethodSMTP drives the full RCPT TO probe. The default everywhere.
	MethodSMTP MethodKind = iota
	// MethodAPI uses the provider's HTTP surface (Gmail cookie probe,
	// Microsoft credential-type endpoint, Yahoo signup availability).
	MethodAPI
	// MethodHeadless delegates to a headless-browser worker.
	MethodHeadless
	// MethodSkip performs no provider check at all.
	MethodSkip
)

func (k MethodKind) String() string {
	switch k {
	case MethodAPI:
		return "api"
	case MethodHeadless:
		return "headless"
	case MethodSkip:
		return "skip"
	default:
		return "smtp"
	}
}

// ParseMethodKind reads the configuration spelling of a strategy.
// Unrecognized values map to MethodSMTP.
func ParseMethodKind(s string) MethodKind {
	switch s {
	case "api":
		return MethodAPI
	case "headless":
		return MethodHeadless
	case "skip":
		return MethodSkip
	default:
		return MethodSMTP
	}
}

// Method is a provider's verification strategy. ProxyID, when set, pins
// the provider to one pool proxy and beats rotation and the default slot.
type Method struct {
	Kind    MethodKind
	ProxyID string
}

// DefaultMethods returns the per-provider strategy set used when the
// configuration does not override one. Yahoo and consumer Hotmail block
// RCPT probes aggressively, so they default to the HTTP flows.
func DefaultMethods() map[Provider]Method {
	return map[Provider]Method{
		Gmail:          {Kind: MethodSMTP},
		HotmailB2B:     {Kind: MethodSMTP},
		HotmailB2C:     {Kind: MethodAPI},
		Yahoo:          {Kind: MethodAPI},
		Mimecast:       {Kind: MethodSMTP},
		Proofpoint:     {Kind: MethodSMTP},
		EverythingElse: {Kind: MethodSMTP},
	}
}
