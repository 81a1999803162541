package location

import (
	"strconv"

	"roomrush/internal/domain"
)

// Resolver turns optional caller-supplied coordinates into a concrete
// location. Fallbacks are configured once here; call sites never carry their
// own defaults.
type Resolver struct {
	fallback domain.Location
}

func New(lat, lon float64, city string) *Resolver {
	return &Resolver{fallback: domain.Location{Lat: lat, Lon: lon, City: city}}
}

// Resolve parses the raw lat/lon/city strings, substituting the fallback for
// anything absent or unparseable. Lat and lon are only honored as a pair.
func (r *Resolver) Resolve(latRaw, lonRaw, city string) domain.Location {
	loc := r.fallback
	if latRaw != "" && lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr == nil && lonErr == nil {
			loc.Lat, loc.Lon = lat, lon
		}
	}
	if city != "" {
		loc.City = city
	}
	return loc
}

func (r *Resolver) Fallback() domain.Location { return r.fallback }
