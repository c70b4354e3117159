package verifier

import "strings"

// rcptOutcome classifies the RCPT TO reply. Permanent rejections become
// Invalid signals, full mailboxes become Risky, and everything ambiguous
// stays a temporary/unknown outcome rather than guessing intent.
type rcptOutcome int

const (
	rcptDeliverable rcptOutcome = iota
	rcptUndeliverable
	rcptFullInbox
	rcptDisabled
	rcptTemporary
	rcptAmbiguous
)

var fullInboxPhrases = []string{
	"insufficient system storage",
	"out of storage",
	"mailbox full",
	"mailbox is full",
	"mailfolder is full",
	"over quota",
	"quota exceeded",
	"exceeded storage allocation",
	"insufficient disk space",
	"out of disk space",
	"user has too many messages",
}

var disabledPhrases = []string{
	"disabled",
	"suspended",
	"deactivated",
	"expired",
	"account has been closed",
}

var undeliverablePhrases = []string{
	"does not exist",
	"no such user",
	"no such recipient",
	"user unknown",
	"unknown user",
	"unknown recipient",
	"invalid recipient",
	"recipient not found",
	"mailbox not found",
	"mailbox unavailable",
	"address rejected",
	"user not found",
	"no mailbox",
}

var blacklistPhrases = []string{
	"blacklist",
	"black list",
	"spamhaus",
	"blocked using",
	"dnsbl",
	"rbl",
	"barracuda",
	"banned",
	"poor reputation",
}

var rdnsPhrases = []string{
	"reverse dns",
	"rdns",
	"ptr record",
	"no ptr",
	"dns check failed",
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// assessRcptReply maps an RCPT TO reply onto a deliverability outcome.
// Text phrases are checked before the bare code: many servers reuse codes
// loosely but state "quota exceeded" or "user unknown" plainly.
func assessRcptReply(code int, text string) rcptOutcome {
	if code >= 200 && code < 300 {
		return rcptDeliverable
	}

	if containsAny(text, fullInboxPhrases) {
		return rcptFullInbox
	}
	if code >= 500 && containsAny(text, disabledPhrases) {
		return rcptDisabled
	}

	switch code {
	case 550, 551, 553:
		return rcptUndeliverable
	case 552:
		// Exceeded storage allocation.
		return rcptFullInbox
	case 421, 450, 451, 452:
		// Greylisting, busy mailbox, throttling: try-again answers that
		// say nothing definitive about the address.
		return rcptTemporary
	case 554:
		if containsAny(text, undeliverablePhrases) {
			return rcptUndeliverable
		}
		return rcptAmbiguous
	case 503:
		return rcptAmbiguous
	default:
		if code >= 500 && containsAny(text, undeliverablePhrases) {
			return rcptUndeliverable
		}
		return rcptAmbiguous
	}
}

// errorDescription tags replies that describe our sending reputation
// rather than the recipient, for the debug block.
func errorDescription(text string) string {
	switch {
	case containsAny(text, blacklistPhrases):
		return "ip_blacklisted"
	case containsAny(text, rdnsPhrases):
		return "needs_rdns"
	default:
		return ""
	}
}
