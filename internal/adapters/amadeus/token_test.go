package amadeus_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"roomrush/internal/adapters/amadeus"
	"roomrush/internal/domain"
)

func tokenServer(t *testing.T, hits *int32, delay time.Duration, token string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/security/oauth2/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if g := r.PostForm.Get("grant_type"); g != "client_credentials" {
			t.Errorf("unexpected grant_type %q", g)
		}
		atomic.AddInt32(hits, 1)
		time.Sleep(delay)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	}))
}

func TestTokenProvider_ConcurrentCallsCoalesce(t *testing.T) {
	var hits int32
	ts := tokenServer(t, &hits, 100*time.Millisecond, "tok-1")
	defer ts.Close()

	p := amadeus.NewTokenProvider(ts.URL, "id", "secret")

	const callers = 16
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = p.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != "tok-1" {
			t.Fatalf("caller %d: got token %q", i, tokens[i])
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly 1 token request, got %d", n)
	}
}

func TestTokenProvider_CachedTokenSkipsNetwork(t *testing.T) {
	var hits int32
	ts := tokenServer(t, &hits, 0, "tok-1")
	defer ts.Close()

	p := amadeus.NewTokenProvider(ts.URL, "id", "secret")
	for i := 0; i < 3; i++ {
		if _, err := p.Token(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected 1 request for 3 sequential calls, got %d", n)
	}
}

func TestTokenProvider_InvalidateForcesReacquire(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-" + string(rune('0'+n))})
	}))
	defer ts.Close()

	p := amadeus.NewTokenProvider(ts.URL, "id", "secret")
	first, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	p.Invalidate()

	second, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second == first {
		t.Fatalf("expected a fresh token after invalidation, got %q twice", first)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected 2 token requests, got %d", n)
	}
}

func TestTokenProvider_ErrorPropagatesToAllWaiters(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	p := amadeus.NewTokenProvider(ts.URL, "id", "secret")

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			t.Fatalf("caller %d: expected error", i)
		}
		var ae *domain.AuthError
		if !errors.As(err, &ae) {
			t.Fatalf("caller %d: expected AuthError, got %T", i, err)
		}
	}

	// A failed acquisition must not poison the provider.
	if _, err := p.Token(context.Background()); err == nil {
		t.Fatalf("expected error against failing server")
	}
}

func TestTokenProvider_UndecodableResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"wrong-shape"}`))
	}))
	defer ts.Close()

	p := amadeus.NewTokenProvider(ts.URL, "id", "secret")
	_, err := p.Token(context.Background())
	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	var de *domain.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected wrapped DecodeError, got %v", err)
	}
	if len(de.Raw) == 0 {
		t.Fatalf("expected raw payload on DecodeError")
	}
}
