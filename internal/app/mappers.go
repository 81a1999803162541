package app

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"roomrush/internal/domain"
)

// Placeholder imagery until the upstream exposes hotel media.
const stockImageURL = "https://images.unsplash.com/photo-1566073771259-6a8506099945"

// Synthesized price bounds. A stand-in for a real pricing integration:
// distribution matters, exact values don't.
const (
	priceMin, priceMax         = 85, 140
	origPriceMin, origPriceMax = 160, 210
	roomsLeftMin, roomsLeftMax = 1, 4
	ratingMin, ratingMax       = 4.1, 4.8
)

// synthesizeDeals maps upstream hotel records into display-ready deals for
// the given city, preserving upstream order.
func synthesizeDeals(hotels []domain.Hotel, city string) []domain.Deal {
	out := make([]domain.Deal, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, synthesizeDeal(h, city))
	}
	return out
}

func synthesizeDeal(h domain.Hotel, city string) domain.Deal {
	return domain.Deal{
		ID:            h.ID,
		Title:         h.Name,
		RoomName:      "Last-Minute Special",
		LocationName:  city,
		Price:         priceMin + rand.Intn(priceMax-priceMin+1),
		OriginalPrice: origPriceMin + rand.Intn(origPriceMax-origPriceMin+1),
		RoomsLeft:     roomsLeftMin + rand.Intn(roomsLeftMax-roomsLeftMin+1),
		Rating:        ratingMin + rand.Float64()*(ratingMax-ratingMin),
		ImageURL:      stockImageURL,
		Type:          "Hotel",
		Lat:           h.Lat,
		Lon:           h.Lon,
	}
}

// DealDistanceKM is a stable pseudo distance for a deal id: the same hotel
// always shows the same distance, without a geodesic computation per card.
func DealDistanceKM(dealID string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(dealID))
	return 0.5 + float64(h.Sum32()%50)/10.0
}

// timeAgo renders a coarse human-relative duration ("3 minutes ago").
func timeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < 2*time.Minute:
		return "1 minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "1 hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
