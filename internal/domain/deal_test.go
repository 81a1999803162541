package domain_test

import (
	"testing"

	"roomrush/internal/domain"
)

func TestDiscountPercentage(t *testing.T) {
	cases := []struct {
		name        string
		price, orig int
		want        int
	}{
		{"quarter off", 150, 200, 25},
		{"zero original is guarded", 100, 0, 0},
		{"negative original is guarded", 100, -10, 0},
		{"rounds to nearest", 100, 300, 67},
		{"no discount", 200, 200, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := domain.Deal{Price: tc.price, OriginalPrice: tc.orig}
			if got := d.DiscountPercentage(); got != tc.want {
				t.Fatalf("DiscountPercentage() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFetchStatusString(t *testing.T) {
	if s := domain.StatusOfflineFallback.String(); s != "offline-fallback" {
		t.Fatalf("unexpected status string %q", s)
	}
	if s := domain.StatusIdle.String(); s != "idle" {
		t.Fatalf("unexpected status string %q", s)
	}
}
