package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var credentialTypeURL = "https://login.microsoftonline.com/common/GetCredentialType"

type credentialTypeRequest struct {
	Username            string `json:"username"`
	IsOtherIdpSupported bool   `json:"isOtherIdpSupported"`
}

type credentialTypeResponse struct {
	IfExistsResult int `json:"IfExistsResult"`
	ThrottleStatus int `json:"ThrottleStatus"`
}

// IfExistsResult values the login endpoint is known to return. 0 and 6
// mean the account exists, 5 means it exists under another identity
// provider, 1 means it does not exist.
const (
	msAccountExists       = 0
	msAccountNotExists    = 1
	msAccountExistsOther  = 5
	msAccountExistsBoth   = 6
)

// checkMicrosoft365 asks Microsoft's sign-in discovery endpoint whether
// the account exists. Works for consumer hotmail/outlook.com addresses
// and organization tenants alike, without any RCPT probing.
func (v *Verifier) checkMicrosoft365(ctx context.Context, address string, px *Proxy) (SMTPDetails, error) {
	client, err := v.httpClient(px)
	if err != nil {
		return SMTPDetails{}, &Microsoft365Error{Err: err}
	}

	payload, err := json.Marshal(credentialTypeRequest{Username: address, IsOtherIdpSupported: true})
	if err != nil {
		return SMTPDetails{}, &Microsoft365Error{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, credentialTypeURL, bytes.NewReader(payload))
	if err != nil {
		return SMTPDetails{}, &Microsoft365Error{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return SMTPDetails{}, &Microsoft365Error{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SMTPDetails{}, &Microsoft365Error{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out credentialTypeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SMTPDetails{}, &Microsoft365Error{Err: err}
	}
	if out.ThrottleStatus == 1 {
		return SMTPDetails{}, &Microsoft365Error{Err: errors.New("request throttled by Microsoft")}
	}

	switch out.IfExistsResult {
	case msAccountExists, msAccountExistsOther, msAccountExistsBoth:
		return SMTPDetails{CanConnect: true, IsDeliverable: true}, nil
	case msAccountNotExists:
		return SMTPDetails{CanConnect: true}, nil
	default:
		return SMTPDetails{}, &Microsoft365Error{Err: fmt.Errorf("unrecognized IfExistsResult %d", out.IfExistsResult)}
	}
}
