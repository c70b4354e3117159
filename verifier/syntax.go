package verifier

import (
	"strings"

	"github.com/badoux/checkmail"
)

// parseSyntax validates and splits an address without touching the
// network. An invalid result short-circuits the whole pipeline.
func parseSyntax(email string) SyntaxDetails {
	addr := strings.ToLower(strings.TrimSpace(email))
	sx := SyntaxDetails{Address: addr}

	if addr == "" {
		return sx
	}
	if err := checkmail.ValidateFormat(addr); err != nil {
		return sx
	}

	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return sx
	}
	local, domain := addr[:at], addr[at+1:]
	if len(local) > 64 || len(domain) > 255 || !strings.Contains(domain, ".") {
		return sx
	}

	sx.LocalPart = local
	sx.Domain = domain
	sx.IsValid = true
	return sx
}
