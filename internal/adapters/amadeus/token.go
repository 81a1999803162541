package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"roomrush/internal/domain"
)

// TokenProvider caches one client-credentials bearer token. Concurrent
// acquisitions collapse into a single upstream request; the token is only
// discarded via Invalidate (the upstream owns expiry, we react to 401s).
type TokenProvider struct {
	base   string
	id     string
	secret string
	hc     *http.Client

	mu    sync.Mutex
	token string

	group singleflight.Group
}

func NewTokenProvider(base, id, secret string) *TokenProvider {
	return &TokenProvider{
		base:   strings.TrimRight(base, "/"),
		id:     id,
		secret: secret,
		hc:     &http.Client{Timeout: 20 * time.Second},
	}
}

func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	if t := p.token; t != "" {
		p.mu.Unlock()
		return t, nil
	}
	p.mu.Unlock()

	v, err, _ := p.group.Do("token", func() (any, error) {
		t, err := p.acquire(ctx)
		if err != nil {
			return "", err
		}
		p.mu.Lock()
		p.token = t
		p.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token. Called by the search client on a 401.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

func (p *TokenProvider) acquire(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.id},
		"client_secret": {p.secret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.base+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &domain.AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.hc.Do(req)
	if err != nil {
		return "", &domain.AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &domain.AuthError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.AuthError{Err: &domain.UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}}
	}

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &domain.AuthError{Err: &domain.DecodeError{Err: err, Raw: body}}
	}
	if tr.AccessToken == "" {
		return "", &domain.AuthError{Err: &domain.DecodeError{Err: errors.New("token response missing access_token"), Raw: body}}
	}
	return tr.AccessToken, nil
}
