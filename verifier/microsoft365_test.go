package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ms365Server(t *testing.T, ifExists, throttle int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req credentialTypeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			t.Errorf("malformed request body: %v", err)
		}
		fmt.Fprintf(w, `{"IfExistsResult":%d,"ThrottleStatus":%d}`, ifExists, throttle)
	}))
	t.Cleanup(srv.Close)
	swapURL(t, &credentialTypeURL, srv.URL)
	return srv
}

func TestCheckMicrosoft365(t *testing.T) {
	testCases := []struct {
		name            string
		ifExists        int
		wantDeliverable bool
	}{
		{"account exists", msAccountExists, true},
		{"exists under other idp", msAccountExistsOther, true},
		{"exists under both", msAccountExistsBoth, true},
		{"account does not exist", msAccountNotExists, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ms365Server(t, tc.ifExists, 0)
			v := newTestVerifier(t, Config{})
			details, err := v.checkMicrosoft365(context.Background(), "user@hotmail.com", nil)
			if err != nil {
				t.Fatalf("checkMicrosoft365: %v", err)
			}
			if details.IsDeliverable != tc.wantDeliverable {
				t.Errorf("IsDeliverable = %t, want %t", details.IsDeliverable, tc.wantDeliverable)
			}
			if !details.CanConnect {
				t.Error("CanConnect false after a clean answer")
			}
		})
	}
}

func TestCheckMicrosoft365Throttled(t *testing.T) {
	ms365Server(t, msAccountExists, 1)
	v := newTestVerifier(t, Config{})
	_, err := v.checkMicrosoft365(context.Background(), "user@hotmail.com", nil)
	var msErr *Microsoft365Error
	if !errors.As(err, &msErr) {
		t.Fatalf("err = %v, want Microsoft365Error", err)
	}
}

func TestCheckMicrosoft365UnrecognizedResult(t *testing.T) {
	ms365Server(t, 42, 0)
	v := newTestVerifier(t, Config{})
	_, err := v.checkMicrosoft365(context.Background(), "user@hotmail.com", nil)
	var msErr *Microsoft365Error
	if !errors.As(err, &msErr) {
		t.Fatalf("err = %v, want Microsoft365Error", err)
	}
}

func TestCheckMicrosoft365BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	swapURL(t, &credentialTypeURL, srv.URL)

	v := newTestVerifier(t, Config{})
	_, err := v.checkMicrosoft365(context.Background(), "user@hotmail.com", nil)
	var msErr *Microsoft365Error
	if !errors.As(err, &msErr) {
		t.Fatalf("err = %v, want Microsoft365Error", err)
	}
}
