package verifier

import (
	"net"
	"strings"
)

// golang.org/x/net/proxy wraps every SOCKS5 failure in a *net.OpError
// whose message carries a small fixed vocabulary ("unknown error
// connection refused", "no acceptable authentication methods", ...).
// decodeSocksError maps those strings back onto the protocol reply codes
// and attaches the detailed cause text surfaced in reason strings, so a
// routing failure is explained instead of reported as a bare code.

type socksReplyRule struct {
	match   string
	code    byte
	summary string
	detail  string
}

var socksReplyRules = []socksReplyRule{
	{
		match:   "general socks server failure",
		code:    0x01,
		summary: "General Failure",
		detail: "SOCKS5 General Failure (reply code 0x01): The proxy server encountered an internal error " +
			"and could not complete the request. Possible causes: " +
			"(1) The proxy cannot reach the target SMTP server - check if the target is accessible from the proxy's network. " +
			"(2) The proxy has internal configuration issues or is overloaded. " +
			"(3) Firewall or security policy on the proxy is blocking this connection. " +
			"(4) The proxy's outbound network is restricted. " +
			"Try using a different proxy or verify the target server is reachable from the proxy's location.",
	},
	{
		match:   "connection not allowed by ruleset",
		code:    0x02,
		summary: "Connection Not Allowed",
		detail: "SOCKS5 Connection Not Allowed (reply code 0x02): The proxy's ruleset explicitly denies this connection. " +
			"The proxy administrator has configured policies that block connections to this target. " +
			"This may be due to: (1) IP-based access control lists, (2) Domain blocking rules, " +
			"(3) Port restrictions (SMTP port 25 is often blocked), (4) Rate limiting or abuse prevention. " +
			"Contact the proxy provider or use a different proxy.",
	},
	{
		match:   "network unreachable",
		code:    0x03,
		summary: "Network Unreachable",
		detail: "SOCKS5 Network Unreachable (reply code 0x03): The proxy cannot route traffic to the target network. " +
			"The target SMTP server's network is not accessible from the proxy. " +
			"Possible causes: (1) No route exists to the target network, (2) Network partition or outage, " +
			"(3) The proxy's network configuration doesn't include this route. " +
			"Try a proxy in a different geographic location.",
	},
	{
		match:   "host unreachable",
		code:    0x04,
		summary: "Host Unreachable",
		detail: "SOCKS5 Host Unreachable (reply code 0x04): The proxy could not reach the target SMTP server host. " +
			"The specific host is not responding or is unreachable. " +
			"Possible causes: (1) The SMTP server is down or offline, (2) DNS resolution failed on the proxy side, " +
			"(3) The host is blocking connections from the proxy's IP, (4) Firewall blocking at the destination. " +
			"Verify the target email domain's MX servers are operational.",
	},
	{
		match:   "connection refused",
		code:    0x05,
		summary: "Connection Refused",
		detail: "SOCKS5 Connection Refused (reply code 0x05): The target SMTP server actively refused the connection. " +
			"The SMTP server is reachable but declined to accept the connection. " +
			"Possible causes: (1) The SMTP server is not accepting connections on this port, " +
			"(2) The proxy's IP address is blacklisted by the SMTP server, " +
			"(3) Rate limiting or connection limits on the target server, " +
			"(4) The SMTP service is temporarily unavailable. " +
			"Try a different proxy with a clean IP reputation.",
	},
	{
		match:   "ttl expired",
		code:    0x06,
		summary: "TTL Expired",
		detail: "SOCKS5 TTL Expired (reply code 0x06): The connection attempt timed out due to TTL expiration. " +
			"The network path to the target is too long or congested. " +
			"This typically indicates severe network latency or routing problems between the proxy and target.",
	},
	{
		match:   "command not supported",
		code:    0x07,
		summary: "Command Not Supported",
		detail: "SOCKS5 Command Not Supported (reply code 0x07): The proxy does not support the CONNECT command. " +
			"This is unusual for a SOCKS5 proxy as CONNECT is a basic command. " +
			"The proxy may have limited functionality or be misconfigured.",
	},
	{
		match:   "address type not supported",
		code:    0x08,
		summary: "Address Type Not Supported",
		detail: "SOCKS5 Address Type Not Supported (reply code 0x08): The proxy does not support the address format used. " +
			"The target address type (IPv4/IPv6/domain) is not supported by this proxy. " +
			"Try using a different address format or a proxy with broader address support.",
	},
}

const socksTimeoutDetail = "SOCKS5 Connection Timeout: The connection to the proxy or target server timed out. " +
	"The proxy server or target SMTP server did not respond in time. " +
	"Possible causes: (1) Network latency is too high, (2) The proxy or target is overloaded, " +
	"(3) Connection was blocked by a firewall without sending a rejection. " +
	"Try increasing timeout values or using a proxy with lower latency."

func decodeSocksError(err error) *SocksError {
	msg := err.Error()
	lower := strings.ToLower(msg)

	if ne, ok := err.(net.Error); (ok && ne.Timeout()) || strings.Contains(lower, "context deadline exceeded") {
		return &SocksError{Summary: "Connection Timeout", Detail: socksTimeoutDetail, Err: err}
	}

	// The forward dial to the proxy itself failed: no SOCKS reply was
	// ever received, so this is an I/O-level cause.
	if strings.Contains(lower, "dial tcp") {
		return decodeSocksIOError(lower, err)
	}

	for _, rule := range socksReplyRules {
		if strings.Contains(lower, rule.match) {
			return &SocksError{ReplyCode: rule.code, Summary: rule.summary, Detail: rule.detail, Err: err}
		}
	}

	switch {
	case strings.Contains(lower, "incorrect username/password"):
		return &SocksError{
			Summary: "Authentication Failed",
			Detail: "SOCKS5 authentication failed: the proxy rejected the username/password pair. " +
				"Verify your proxy username and password are correct.",
			Err: err,
		}
	case strings.Contains(lower, "no acceptable authentication methods"):
		return &SocksError{
			Summary: "Authentication Method Not Accepted",
			Detail: "SOCKS5 authentication method not accepted. " +
				"The proxy requires a different authentication method than what was offered " +
				"(no-auth or username/password).",
			Err: err,
		}
	case strings.Contains(lower, "unsupported authentication method"),
		strings.Contains(lower, "invalid username/password"):
		return &SocksError{
			Summary: "Invalid Proxy Credentials",
			Detail: "Invalid SOCKS5 connection argument: " + msg + ". " +
				"Check the proxy configuration parameters.",
			Err: err,
		}
	case strings.Contains(lower, "unexpected protocol version"):
		return &SocksError{
			Summary: "Unsupported SOCKS Version",
			Detail: "Unsupported SOCKS version. Expected SOCKS5 (version 5). " +
				"The server may not support SOCKS5 or is running a different protocol. Raw error: " + msg + ".",
			Err: err,
		}
	case strings.Contains(lower, "fqdn too long"):
		return &SocksError{
			Summary: "Domain Too Long",
			Detail: "Domain name too long for SOCKS5 protocol: exceeds 255 bytes. " +
				"The target domain name exceeds SOCKS5 protocol limits.",
			Err: err,
		}
	case strings.Contains(lower, "read tcp"), strings.Contains(lower, "write tcp"), strings.Contains(lower, "eof"):
		return decodeSocksIOError(lower, err)
	}

	return &SocksError{
		Summary: "Unexpected Error",
		Detail: "SOCKS5 unexpected error: " + msg + ". " +
			"This is an unclassified error from the proxy connection.",
		Err: err,
	}
}

// decodeSocksIOError explains transport failures between us and the proxy
// (not SOCKS replies), keyed on the portable error text.
func decodeSocksIOError(lower string, err error) *SocksError {
	kind := "i/o error"
	detail := "I/O error occurred while communicating with the SOCKS5 proxy."

	switch {
	case strings.Contains(lower, "connection refused"):
		kind = "connection refused"
		detail = "Connection refused - the SOCKS5 proxy server is not accepting connections. " +
			"Verify the proxy is running and the port is correct."
	case strings.Contains(lower, "connection reset"):
		kind = "connection reset"
		detail = "Connection reset by proxy - the SOCKS5 server terminated the connection unexpectedly. " +
			"The proxy may be overloaded or blocking this connection."
	case strings.Contains(lower, "timed out"), strings.Contains(lower, "timeout"):
		kind = "timed out"
		detail = "Connection timed out - unable to reach the SOCKS5 proxy server within the timeout period. " +
			"Check network connectivity and firewall rules."
	case strings.Contains(lower, "connection aborted"):
		kind = "connection aborted"
		detail = "Connection aborted - the connection to the SOCKS5 proxy was terminated. " +
			"This may indicate network instability or proxy issues."
	case strings.Contains(lower, "no such host"), strings.Contains(lower, "address not available"):
		kind = "address not available"
		detail = "Address not available - the SOCKS5 proxy address could not be resolved or is invalid."
	case strings.Contains(lower, "address already in use"):
		kind = "address in use"
		detail = "Address in use - local address conflict when connecting to SOCKS5 proxy."
	case strings.Contains(lower, "permission denied"):
		kind = "permission denied"
		detail = "Permission denied - insufficient permissions to connect to the SOCKS5 proxy. " +
			"This may be a firewall or system policy issue."
	case strings.Contains(lower, "eof"):
		kind = "unexpected end of file"
		detail = "Unexpected end of stream - the SOCKS5 proxy closed the connection prematurely. " +
			"The proxy may have crashed or rejected the request."
	}

	return &SocksError{
		Summary: "I/O Error",
		Detail:  "SOCKS5 I/O error (" + kind + "): " + detail + " Raw error: " + err.Error(),
		Err:     err,
	}
}
