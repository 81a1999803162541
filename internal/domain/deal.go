package domain

import "math"

// Deal is a display-ready hotel offer record. Prices are synthesized by the
// app layer until a real pricing integration exists.
type Deal struct {
	ID            string
	Title         string
	RoomName      string
	LocationName  string
	Price         int
	OriginalPrice int
	RoomsLeft     int
	Rating        float64
	ImageURL      string
	Type          string
	Lat, Lon      float64
}

// DiscountPercentage derives the badge percentage from the price pair.
// Guarded against a zero/negative original price.
func (d Deal) DiscountPercentage() int {
	if d.OriginalPrice <= 0 {
		return 0
	}
	return int(math.Round(float64(d.OriginalPrice-d.Price) / float64(d.OriginalPrice) * 100))
}

// Hotel is one upstream search result, pre-synthesis.
type Hotel struct {
	ID       string
	Name     string
	Lat, Lon float64
}

// FetchStatus drives the presentation layer's spinner and offline banner.
type FetchStatus int

const (
	StatusIdle FetchStatus = iota
	StatusLoading
	StatusLoaded
	StatusOfflineFallback
)

func (s FetchStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusOfflineFallback:
		return "offline-fallback"
	default:
		return "idle"
	}
}
