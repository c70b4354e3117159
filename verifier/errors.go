package verifier

import (
	"fmt"
	"time"
)

// The probe and strategy layer surface failures as typed errors so the
// classifier can format the exact reason tier. All of them resolve to an
// Unknown verdict; permanent rejections are not errors, they are recorded
// in SMTPDetails.

// ConnectError means the SMTP server could not be reached or greeted:
// TCP connect failure, dropped connection, or a non-2xx greeting.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return fmt.Sprintf("cannot connect to SMTP server: %v", e.Err) }
func (e *ConnectError) Unwrap() error { return e.Err }

// TimeoutError means a probe stage exceeded its deadline.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("timed out after %v", e.After) }

// ReplyError is an unexpected, temporary or ambiguous SMTP reply that
// prevents a deliverability conclusion.
type ReplyError struct {
	Reply string
}

func (e *ReplyError) Error() string { return e.Reply }

// IOError is a read/write failure on an established SMTP connection.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// SocksError is a failure establishing the proxied connection, decoded
// into the SOCKS5 reply code (when one was received) and a detailed,
// human-readable cause.
type SocksError struct {
	// ReplyCode is the SOCKS5 reply field (0x01-0x08), or 0 when the
	// failure happened before a reply was received.
	ReplyCode byte
	// Summary is the short RFC 1928 name, e.g. "Connection Refused".
	Summary string
	// Detail is the full explanation used verbatim in the reason text.
	Detail string
	Err    error
}

func (e *SocksError) Error() string {
	if e.Summary != "" {
		return fmt.Sprintf("SOCKS5 %s: %v", e.Summary, e.Err)
	}
	return fmt.Sprintf("SOCKS5 error: %v", e.Err)
}

func (e *SocksError) Unwrap() error { return e.Err }

// GmailError is a failure of the Gmail HTTP verification flow.
type GmailError struct {
	Err error
}

func (e *GmailError) Error() string { return e.Err.Error() }
func (e *GmailError) Unwrap() error { return e.Err }

// YahooError is a failure of the Yahoo account-availability flow.
type YahooError struct {
	Err error
}

func (e *YahooError) Error() string { return e.Err.Error() }
func (e *YahooError) Unwrap() error { return e.Err }

// Microsoft365Error is a failure of the Microsoft credential-type flow.
type Microsoft365Error struct {
	Err error
}

func (e *Microsoft365Error) Error() string { return e.Err.Error() }
func (e *Microsoft365Error) Unwrap() error { return e.Err }

// HeadlessError means the provider is configured for headless-browser
// verification, which needs an external browser worker.
type HeadlessError struct {
	Reason string
}

func (e *HeadlessError) Error() string { return e.Reason }

// SkipError means the provider's strategy is configured to skip
// verification entirely.
type SkipError struct {
	Provider Provider
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("verification skipped for provider %s", e.Provider)
}
