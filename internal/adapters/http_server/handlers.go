package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"roomrush/internal/adapters/location"
	"roomrush/internal/app"
	"roomrush/internal/domain"
)

type Handlers struct {
	Deals      *app.DealService
	Queries    *app.QueryService
	Favourites *app.FavouriteService
	Location   *location.Resolver
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/deals", h.listDeals)
	s.mux.Post("/v1/deals/refresh", h.refresh)
	s.mux.Get("/v1/status", h.status)
	s.mux.Put("/v1/users/{id}/favourites/{dealID}", h.toggleFavourite)
	s.mux.Get("/v1/users/{id}/favourites", h.listFavourites)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// dealView is the wire shape of one deal card.
type dealView struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	RoomName           string  `json:"roomName"`
	LocationName       string  `json:"locationName"`
	Price              int     `json:"price"`
	OriginalPrice      int     `json:"originalPrice"`
	DiscountPercentage int     `json:"discountPercentage"`
	RoomsLeft          int     `json:"roomsLeft"`
	Rating             float64 `json:"rating"`
	ImageURL           string  `json:"imageUrl"`
	Type               string  `json:"type"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	DistanceKM         float64 `json:"distanceKm"`
}

func toViews(deals []domain.Deal) []dealView {
	out := make([]dealView, 0, len(deals))
	for _, d := range deals {
		out = append(out, dealView{
			ID:                 d.ID,
			Title:              d.Title,
			RoomName:           d.RoomName,
			LocationName:       d.LocationName,
			Price:              d.Price,
			OriginalPrice:      d.OriginalPrice,
			DiscountPercentage: d.DiscountPercentage(),
			RoomsLeft:          d.RoomsLeft,
			Rating:             d.Rating,
			ImageURL:           d.ImageURL,
			Type:               d.Type,
			Latitude:           d.Lat,
			Longitude:          d.Lon,
			DistanceKM:         app.DealDistanceKM(d.ID),
		})
	}
	return out
}

type listResponse struct {
	Status  string     `json:"status"`
	Updated string     `json:"updated"`
	Deals   []dealView `json:"deals"`
}

func (h *Handlers) listDeals(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("filter")
	if category == "" {
		category = app.FilterAll
	}
	deals, err := h.Queries.ListDeals(r.Context(), category)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "listing deals failed")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Status:  h.Deals.Status().String(),
		Updated: h.Deals.UpdatedAgo(),
		Deals:   toViews(deals),
	})
}

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := h.Location.Resolve(q.Get("lat"), q.Get("lon"), q.Get("city"))
	force, _ := strconv.ParseBool(q.Get("force"))

	done := h.Deals.Refresh(r.Context(), app.RefreshRequest{
		Lat:   loc.Lat,
		Lon:   loc.Lon,
		City:  loc.City,
		Force: force,
	})

	// Wait for the outcome unless the client disconnects first; the pipeline
	// itself keeps running either way.
	select {
	case status := <-done:
		writeJSON(w, http.StatusOK, map[string]string{"status": status.String()})
	case <-r.Context().Done():
		writeJSON(w, http.StatusAccepted, map[string]string{"status": domain.StatusLoading.String()})
	}
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  h.Deals.Status().String(),
		"updated": h.Deals.UpdatedAgo(),
	})
}

func (h *Handlers) toggleFavourite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	dealID := chi.URLParam(r, "dealID")
	if userID == "" || dealID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "user id and deal id are required")
		return
	}
	saved, err := h.Favourites.Toggle(r.Context(), userID, dealID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "toggling favourite failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

func (h *Handlers) listFavourites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "user id is required")
		return
	}
	ids, err := h.Favourites.List(r.Context(), userID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "listing favourites failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"favourites": ids})
}
