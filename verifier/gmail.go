package verifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

var gmailLookupURL = "https://mail.google.com/mail/gxlu"

// checkGmail asks Gmail's lightweight existence endpoint instead of
// probing the Google MX. The endpoint answers 204 either way; an existing
// account gets a session Set-Cookie on the response.
func (v *Verifier) checkGmail(ctx context.Context, address string, px *Proxy) (SMTPDetails, error) {
	client, err := v.httpClient(px)
	if err != nil {
		return SMTPDetails{}, &GmailError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		gmailLookupURL+"?email="+url.QueryEscape(address), nil)
	if err != nil {
		return SMTPDetails{}, &GmailError{Err: err}
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return SMTPDetails{}, &GmailError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return SMTPDetails{}, &GmailError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	exists := len(resp.Header.Values("Set-Cookie")) > 0
	return SMTPDetails{CanConnect: true, IsDeliverable: exists}, nil
}
