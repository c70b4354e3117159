package verifier

import "time"

// Verdict is the final deliverability classification of an address.
type Verdict string

const (
	VerdictSafe    Verdict = "safe"
	VerdictRisky   Verdict = "risky"
	VerdictInvalid Verdict = "invalid"
	VerdictUnknown Verdict = "unknown"
)

// Result is the full outcome of verifying a single address. Failures are
// folded into Verdict/Reason rather than returned as errors, so callers
// always get a complete record to serialize or persist.
type Result struct {
	Input   string        `json:"input"`
	Verdict Verdict       `json:"verdict"`
	Reason  string        `json:"reason"`
	Syntax  SyntaxDetails `json:"syntax"`
	MX      MXDetails     `json:"mx"`
	Misc    MiscDetails   `json:"misc"`
	SMTP    SMTPDetails   `json:"smtp"`
	Debug   DebugDetails  `json:"debug"`
}

// SyntaxDetails describes the parsed local-part@domain structure.
type SyntaxDetails struct {
	Address   string `json:"address"`
	LocalPart string `json:"local_part"`
	Domain    string `json:"domain"`
	IsValid   bool   `json:"is_valid_syntax"`
}

// MXDetails records the DNS MX lookup outcome. Records are exchange
// hostnames ordered by preference.
type MXDetails struct {
	AcceptsMail bool     `json:"accepts_mail"`
	Records     []string `json:"records"`
}

// MiscDetails holds the heuristic flags that do not require a probe.
type MiscDetails struct {
	IsDisposable  bool `json:"is_disposable"`
	IsRoleAccount bool `json:"is_role_account"`
}

// SMTPDetails holds the signals extracted from the provider check. The
// flags follow the probe semantics: HasFullInbox suppresses the
// not-deliverable signal, since a full mailbox exists.
type SMTPDetails struct {
	CanConnect    bool `json:"can_connect_smtp"`
	IsDeliverable bool `json:"is_deliverable"`
	IsCatchAll    bool `json:"is_catch_all"`
	HasFullInbox  bool `json:"has_full_inbox"`
	IsDisabled    bool `json:"is_disabled"`
}

// DebugDetails carries timings, the routing decision and the raw protocol
// trace for one verification.
type DebugDetails struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMs int64     `json:"duration_ms"`
	Provider   string    `json:"provider"`
	Strategy   string    `json:"strategy"`
	// Connection is the egress descriptor: "proxy:<host>:<port>",
	// "proxy:<host>:<port>@<user>:<pass>", "local:<ip>" or "local:<hostname>".
	Connection string `json:"connection"`
	// ErrorDesc is set when the server reply matched a known operational
	// category (ip_blacklisted, needs_rdns).
	ErrorDesc string   `json:"smtp_error_desc,omitempty"`
	Trace     []string `json:"trace,omitempty"`
}
