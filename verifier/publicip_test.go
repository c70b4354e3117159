package verifier

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPublicIPCacheFetchesAndCaches(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("203.0.113.9\n"))
	}))
	defer srv.Close()

	c := newPublicIPCache([]string{srv.URL})
	for i := 0; i < 4; i++ {
		if got := c.descriptor(); got != "local:203.0.113.9" {
			t.Fatalf("descriptor #%d = %q, want local:203.0.113.9", i, got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("upstream hit %d times, want 1 (cached for the TTL)", n)
	}
}

func TestPublicIPCacheFallsThroughServices(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("198.51.100.4"))
	}))
	defer good.Close()

	c := newPublicIPCache([]string{broken.URL, good.URL})
	if got := c.descriptor(); got != "local:198.51.100.4" {
		t.Fatalf("descriptor = %q, want local:198.51.100.4", got)
	}
}

func TestPublicIPCacheRejectsNonIPBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>blocked</html>"))
	}))
	defer srv.Close()

	c := newPublicIPCache([]string{srv.URL})
	got := c.descriptor()

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		if got != "local:unknown" {
			t.Fatalf("descriptor = %q, want local:unknown", got)
		}
		return
	}
	if got != "local:"+hostname {
		t.Fatalf("descriptor = %q, want hostname fallback local:%s", got, hostname)
	}
}

func TestPublicIPCacheCollapsesConcurrentFetches(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("192.0.2.77"))
	}))
	defer srv.Close()

	c := newPublicIPCache([]string{srv.URL})

	const waiters = 25
	var wg sync.WaitGroup
	results := make([]string, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.descriptor()
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != "local:192.0.2.77" {
			t.Fatalf("waiter %d got %q", i, r)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("upstream hit %d times, want 1 (single-flight)", n)
	}
}
