package verifier

import (
	"errors"
	"fmt"
	"strings"
)

// calculateVerdict folds the heuristic flags and the provider-check
// outcome into the final verdict and reason. Precedence across signal
// classes is fixed: Invalid beats Risky beats Unknown beats Safe. The
// list heuristics hold whether or not the probe completed, so a
// disposable address stays Risky even when its server is unreachable;
// probe-derived signals exist only when the probe completed. The reason
// joins every triggered tag of the chosen tier, prefixed with the
// verdict name.
func calculateVerdict(misc MiscDetails, smtp SMTPDetails, smtpErr error) (Verdict, string) {
	if smtpErr == nil {
		var invalid []string
		if smtp.IsDisabled {
			invalid = append(invalid, "email account is disabled")
		}
		// A full mailbox exists, so fullness suppresses the
		// not-deliverable signal and surfaces as Risky below.
		if !smtp.IsDeliverable && !smtp.HasFullInbox {
			invalid = append(invalid, "email is not deliverable")
		}
		if len(invalid) > 0 {
			return VerdictInvalid, "Invalid: " + strings.Join(invalid, ", ")
		}
	}

	var risky []string
	if misc.IsDisposable {
		risky = append(risky, "disposable email address")
	}
	if misc.IsRoleAccount {
		risky = append(risky, "role-based account (e.g., admin@, support@)")
	}
	if smtpErr == nil {
		if smtp.IsCatchAll {
			risky = append(risky, "catch-all address (accepts all emails)")
		}
		if smtp.HasFullInbox {
			risky = append(risky, "inbox is full")
		}
	}
	if len(risky) > 0 {
		return VerdictRisky, "Risky: " + strings.Join(risky, ", ")
	}

	if smtpErr != nil {
		return VerdictUnknown, formatUnknownReason(smtpErr)
	}
	return VerdictSafe, "Email verification passed all checks"
}

// formatUnknownReason renders the typed failure behind an Unknown verdict.
func formatUnknownReason(err error) string {
	var (
		socksErr   *SocksError
		timeoutErr *TimeoutError
		connErr    *ConnectError
		replyErr   *ReplyError
		ioErr      *IOError
		gmailErr   *GmailError
		yahooErr   *YahooError
		msErr      *Microsoft365Error
		headless   *HeadlessError
		skipErr    *SkipError
	)

	switch {
	case errors.As(err, &socksErr):
		return "Unknown: " + socksErr.Detail
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("Unknown: SMTP connection timed out after %v", timeoutErr.After)
	case errors.As(err, &connErr):
		return fmt.Sprintf("Unknown: cannot connect to SMTP server - %v", connErr.Err)
	case errors.As(err, &replyErr):
		return fmt.Sprintf("Unknown: SMTP error - %s", replyErr.Reply)
	case errors.As(err, &ioErr):
		return fmt.Sprintf("Unknown: I/O error during SMTP connection - %v", ioErr.Err)
	case errors.As(err, &gmailErr):
		return fmt.Sprintf("Unknown: Gmail verification failed - %v", gmailErr.Err)
	case errors.As(err, &yahooErr):
		return fmt.Sprintf("Unknown: Yahoo verification failed - %v", yahooErr.Err)
	case errors.As(err, &msErr):
		return fmt.Sprintf("Unknown: Microsoft 365 verification failed - %v", msErr.Err)
	case errors.As(err, &headless):
		return fmt.Sprintf("Unknown: Headless browser verification failed - %s", headless.Reason)
	case errors.As(err, &skipErr):
		return fmt.Sprintf("Unknown: %v", skipErr)
	default:
		return fmt.Sprintf("Unknown: Unexpected error - %v", err)
	}
}
