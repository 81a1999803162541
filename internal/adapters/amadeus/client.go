package amadeus

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"roomrush/internal/adapters/observability"
	"roomrush/internal/domain"
)

// searchRadiusKM is fixed: the product promise is "deals within 5 km".
const searchRadiusKM = 5

type Client struct {
	base   string
	hc     *http.Client
	tokens domain.TokenSource
	rl     *rate.Limiter
}

func New(base string, tokens domain.TokenSource, rps int) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		hc:     &http.Client{Timeout: 20 * time.Second},
		tokens: tokens,
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type hotelResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
		GeoCode struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geoCode"`
	} `json:"data"`
}

// SearchHotels queries the by-geocode endpoint. Coordinates are formatted to
// 4 decimal places; the upstream rejects higher precision.
func (c *Client) SearchHotels(ctx context.Context, lat, lon float64) ([]domain.Hotel, error) {
	u := fmt.Sprintf("%s/v1/reference-data/locations/hotels/by-geocode?latitude=%.4f&longitude=%.4f&radius=%d&radiusUnit=KM",
		c.base, lat, lon, searchRadiusKM)

	body, err := c.get(ctx, u, "hotels-by-geocode")
	if err != nil {
		return nil, err
	}

	var hr hotelResponse
	if err := json.Unmarshal(body, &hr); err != nil {
		return nil, &domain.DecodeError{Err: err, Raw: body}
	}
	out := make([]domain.Hotel, 0, len(hr.Data))
	for _, h := range hr.Data {
		out = append(out, domain.Hotel{
			ID:   h.HotelID,
			Name: h.Name,
			Lat:  h.GeoCode.Latitude,
			Lon:  h.GeoCode.Longitude,
		})
	}
	return out, nil
}

// get performs a bearer-authorized GET with client-side rate limiting and
// retries on 429/transient 5xx, honoring Retry-After when provided.
// A 401 invalidates the cached token before surfacing.
func (c *Client) get(ctx context.Context, url, endpoint string) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "roomrush/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &domain.NetworkError{Err: err}
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("amadeus", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			resp.Body.Close()
			if err != nil {
				return nil, &domain.NetworkError{Err: err}
			}
			return b, nil

		case http.StatusUnauthorized:
			// Stale or revoked token; force the next caller to reacquire.
			c.tokens.Invalidate()
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &domain.UpstreamError{Status: resp.StatusCode}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
	}

	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
