package verifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// yahooServer fakes the two-step signup flow: the GET hands out the AS
// session cookie carrying the crumb, the POST validates the requested ID.
func yahooServer(t *testing.T, setCookie bool, yidError string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		if setCookie {
			w.Header().Set("Set-Cookie", "AS=v=1&s=testcrumb&d=sig; Path=/")
		}
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/validate", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
		}
		if got := r.PostForm.Get("acrumb"); got != "testcrumb" {
			t.Errorf("acrumb = %q, want testcrumb", got)
		}
		if r.PostForm.Get("yid") == "" {
			t.Error("missing yid field")
		}
		if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
			t.Errorf("X-Requested-With = %q", got)
		}
		if yidError == "" {
			fmt.Fprint(w, `{"errors":[]}`)
			return
		}
		fmt.Fprintf(w, `{"errors":[{"name":"yid","error":%q}]}`, yidError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	swapURL(t, &yahooSignupURL, srv.URL+"/signup")
	swapURL(t, &yahooValidateURL, srv.URL+"/validate")
	return srv
}

func TestCheckYahooExists(t *testing.T) {
	for _, code := range []string{"IDENTIFIER_EXISTS", "IDENTIFIER_NOT_AVAILABLE"} {
		t.Run(code, func(t *testing.T) {
			yahooServer(t, true, code)
			v := newTestVerifier(t, Config{})
			details, err := v.checkYahoo(context.Background(), "takenname", nil)
			if err != nil {
				t.Fatalf("checkYahoo: %v", err)
			}
			if !details.IsDeliverable || !details.CanConnect {
				t.Errorf("details = %+v, want deliverable", details)
			}
		})
	}
}

func TestCheckYahooAvailable(t *testing.T) {
	// No complaint about the ID means no such mailbox.
	yahooServer(t, true, "")
	v := newTestVerifier(t, Config{})
	details, err := v.checkYahoo(context.Background(), "freename", nil)
	if err != nil {
		t.Fatalf("checkYahoo: %v", err)
	}
	if details.IsDeliverable {
		t.Error("available ID reported as deliverable")
	}
	if !details.CanConnect {
		t.Error("CanConnect false after a clean flow")
	}
}

func TestCheckYahooUnexpectedValidation(t *testing.T) {
	yahooServer(t, true, "SOME_NEW_ERROR")
	v := newTestVerifier(t, Config{})
	_, err := v.checkYahoo(context.Background(), "weird", nil)
	var yErr *YahooError
	if !errors.As(err, &yErr) {
		t.Fatalf("err = %v, want YahooError", err)
	}
}

func TestCheckYahooMissingCrumb(t *testing.T) {
	yahooServer(t, false, "IDENTIFIER_EXISTS")
	v := newTestVerifier(t, Config{})
	_, err := v.checkYahoo(context.Background(), "anyone", nil)
	var yErr *YahooError
	if !errors.As(err, &yErr) {
		t.Fatalf("err = %v, want YahooError", err)
	}
	if !strings.Contains(err.Error(), "acrumb") {
		t.Errorf("error %q does not mention the missing crumb", err)
	}
}
