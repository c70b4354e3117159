package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var (
	yahooSignupURL   = "https://login.yahoo.com/account/create?specId=yidreg&lang=en-US"
	yahooValidateURL = "https://login.yahoo.com/account/module/create?validateField=yid"
)

// The anti-CSRF crumb hides inside the AS session cookie ("v=1&s=...").
var yahooAcrumbRe = regexp.MustCompile(`s=([^;&]+)`)

type yahooFieldError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type yahooValidateResponse struct {
	Errors []yahooFieldError `json:"errors"`
}

// checkYahoo runs the signup username-availability flow: a taken Yahoo ID
// means the mailbox exists. Two requests: load the signup page for the
// session cookie + crumb, then validate the ID field.
func (v *Verifier) checkYahoo(ctx context.Context, localPart string, px *Proxy) (SMTPDetails, error) {
	client, err := v.httpClient(px)
	if err != nil {
		return SMTPDetails{}, &YahooError{Err: err}
	}

	acrumb, err := v.yahooAcrumb(ctx, client)
	if err != nil {
		return SMTPDetails{}, &YahooError{Err: err}
	}

	form := url.Values{
		"specId": {"yidreg"},
		"acrumb": {acrumb},
		"yid":    {localPart},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, yahooValidateURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return SMTPDetails{}, &YahooError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := client.Do(req)
	if err != nil {
		return SMTPDetails{}, &YahooError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SMTPDetails{}, &YahooError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out yahooValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SMTPDetails{}, &YahooError{Err: err}
	}

	for _, fe := range out.Errors {
		if fe.Name != "yid" {
			continue
		}
		switch fe.Error {
		case "IDENTIFIER_EXISTS", "IDENTIFIER_NOT_AVAILABLE":
			return SMTPDetails{CanConnect: true, IsDeliverable: true}, nil
		case "":
		default:
			return SMTPDetails{}, &YahooError{Err: fmt.Errorf("unexpected validation error %s", fe.Error)}
		}
	}
	// No complaint about the ID: the name is free, so no mailbox.
	return SMTPDetails{CanConnect: true}, nil
}

// yahooAcrumb loads the signup page and digs the crumb out of the AS
// cookie the response sets.
func (v *Verifier) yahooAcrumb(ctx context.Context, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, yahooSignupURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	u, _ := url.Parse(yahooSignupURL)
	for _, ck := range client.Jar.Cookies(u) {
		if ck.Name != "AS" {
			continue
		}
		if m := yahooAcrumbRe.FindStringSubmatch(ck.Value); m != nil {
			return m[1], nil
		}
	}
	return "", errors.New("acrumb not found in signup cookies")
}
