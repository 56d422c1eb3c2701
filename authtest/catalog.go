package authtest

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

/*
====================================
TRIPS (PUBLIC)
====================================
*/

func (s *Server) handleSearchTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, date := q.Get("from_city"), q.Get("to_city"), q.Get("date")

	s.mu.Lock()
	out := make([]Trip, 0, len(s.trips))
	for _, t := range s.trips {
		route := s.routes[t.RouteID]
		if route == nil {
			continue
		}
		if from != "" && !strings.EqualFold(route.FromCity, from) {
			continue
		}
		if to != "" && !strings.EqualFold(route.ToCity, to) {
			continue
		}
		if date != "" && t.DepartureTime.UTC().Format(time.DateOnly) != date {
			continue
		}
		out = append(out, s.tripView(t))
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b Trip) int { return a.DepartureTime.Compare(b.DepartureTime) })
	writeJSON(w, http.StatusOK, map[string]any{"trips": paginate(r, out)})
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	t, ok := s.trips[chi.URLParam(r, "id")]
	var out Trip
	if ok {
		out = s.tripView(t)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Trip not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTripSeats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	seats, ok := s.seats[id]
	out := make([]Seat, 0, len(seats))
	for _, seat := range seats {
		out = append(out, *seat)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Trip not found")
		return
	}
	slices.SortFunc(out, func(a, b Seat) int { return strings.Compare(a.SeatNumber, b.SeatNumber) })
	writeJSON(w, http.StatusOK, map[string]any{"seats": out})
}

// tripView requires s.mu.
func (s *Server) tripView(t *Trip) Trip {
	out := *t
	if b, ok := s.buses[t.BusID]; ok {
		bus := *b
		out.Bus = &bus
	}
	if rt, ok := s.routes[t.RouteID]; ok {
		route := *rt
		out.Route = &route
	}
	return out
}

/*
====================================
ADMIN: BUSES
====================================
*/

func (s *Server) handleCreateBus(w http.ResponseWriter, r *http.Request) {
	var bus Bus
	if err := decodeJSON(r, &bus); err != nil || bus.LicensePlate == "" || bus.BusType == "" {
		writeError(w, http.StatusBadRequest, "license_plate and bus_type are required")
		return
	}
	now := time.Now().UTC()
	bus.ID = uuid.NewString()
	bus.CreatedAt, bus.UpdatedAt = now, now
	if bus.Status == "" {
		bus.Status = "active"
	}

	s.mu.Lock()
	for _, b := range s.buses {
		if strings.EqualFold(b.LicensePlate, bus.LicensePlate) {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "license plate already registered")
			return
		}
	}
	s.buses[bus.ID] = &bus
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, bus)
}

func (s *Server) handleListBuses(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	s.mu.Lock()
	out := make([]Bus, 0, len(s.buses))
	for _, b := range s.buses {
		if status == "" || b.Status == status {
			out = append(out, *b)
		}
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b Bus) int { return strings.Compare(a.LicensePlate, b.LicensePlate) })
	writeJSON(w, http.StatusOK, map[string]any{"buses": paginate(r, out)})
}

func (s *Server) handleGetBus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b, ok := s.buses[chi.URLParam(r, "id")]
	var out Bus
	if ok {
		out = *b
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Bus not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpdateBus decodes the body over the stored bus, so absent fields keep
// their values.
func (s *Server) handleUpdateBus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buses[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Bus not found")
		return
	}
	updated := *b
	if err := decodeJSON(r, &updated); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated.ID, updated.CreatedAt, updated.UpdatedAt = b.ID, b.CreatedAt, time.Now().UTC()
	*b = updated
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buses[id]; !ok {
		writeError(w, http.StatusNotFound, "Bus not found")
		return
	}
	for _, t := range s.trips {
		if t.BusID == id {
			writeError(w, http.StatusConflict, "bus has scheduled trips")
			return
		}
	}
	delete(s.buses, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bus deleted"})
}

/*
====================================
ADMIN: ROUTES
====================================
*/

func (s *Server) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	var route Route
	if err := decodeJSON(r, &route); err != nil || route.FromCity == "" || route.ToCity == "" {
		writeError(w, http.StatusBadRequest, "from_city and to_city are required")
		return
	}
	now := time.Now().UTC()
	route.ID = uuid.NewString()
	route.CreatedAt, route.UpdatedAt = now, now
	if route.Name == "" {
		route.Name = route.FromCity + " - " + route.ToCity
	}

	s.mu.Lock()
	s.routes[route.ID] = &route
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, route)
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]Route, 0, len(s.routes))
	for _, rt := range s.routes {
		out = append(out, *rt)
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b Route) int { return strings.Compare(a.Name, b.Name) })
	writeJSON(w, http.StatusOK, map[string]any{"routes": paginate(r, out)})
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rt, ok := s.routes[chi.URLParam(r, "id")]
	var out Route
	if ok {
		out = *rt
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRoute(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.routes[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	updated := *rt
	if err := decodeJSON(r, &updated); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated.ID, updated.CreatedAt, updated.UpdatedAt = rt.ID, rt.CreatedAt, time.Now().UTC()
	*rt = updated
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[id]; !ok {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	for _, t := range s.trips {
		if t.RouteID == id {
			writeError(w, http.StatusConflict, "route has scheduled trips")
			return
		}
	}
	delete(s.routes, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Route deleted"})
}

/*
====================================
ADMIN: TRIPS
====================================
*/

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var t Trip
	if err := decodeJSON(r, &t); err != nil || t.BusID == "" || t.RouteID == "" {
		writeError(w, http.StatusBadRequest, "bus_id and route_id are required")
		return
	}
	if !t.ArrivalTime.After(t.DepartureTime) {
		writeError(w, http.StatusBadRequest, "arrival_time must be after departure_time")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bus, okBus := s.buses[t.BusID]
	route, okRoute := s.routes[t.RouteID]
	if !okBus || !okRoute {
		writeError(w, http.StatusBadRequest, "unknown bus or route")
		return
	}
	t.ID = uuid.NewString()
	t.Status = "scheduled"
	t.Duration = int(t.ArrivalTime.Sub(t.DepartureTime).Minutes())
	if t.Price <= 0 {
		t.Price = route.BasePrice
	}
	t.Bus, t.Route = nil, nil
	s.trips[t.ID] = &t
	s.seats[t.ID] = seatsFor(t.ID, bus.SeatLayout)
	writeJSON(w, http.StatusCreated, s.tripView(&t))
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Trip not found")
		return
	}
	updated := *t
	if err := decodeJSON(r, &updated); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if updated.BusID != t.BusID || updated.RouteID != t.RouteID {
		writeError(w, http.StatusBadRequest, "bus_id and route_id cannot change")
		return
	}
	updated.ID = t.ID
	updated.Bus, updated.Route = nil, nil
	updated.Duration = int(updated.ArrivalTime.Sub(updated.DepartureTime).Minutes())
	*t = updated
	writeJSON(w, http.StatusOK, s.tripView(t))
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[id]; !ok {
		writeError(w, http.StatusNotFound, "Trip not found")
		return
	}
	for _, b := range s.bookings {
		if b.TripID == id && b.Status != "cancelled" && b.Status != "expired" {
			writeError(w, http.StatusConflict, "trip has active bookings")
			return
		}
	}
	delete(s.trips, id)
	delete(s.seats, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Trip deleted"})
}

/*
====================================
SEED
====================================
*/

func seatsFor(tripID string, layout SeatLayout) map[string]*Seat {
	out := map[string]*Seat{}
	for _, row := range layout.Layout {
		for _, cell := range row {
			if cell == "" || cell == "aisle" || cell == "empty" {
				continue
			}
			out[cell] = &Seat{ID: uuid.NewString(), TripID: tripID, SeatNumber: cell, Status: "available"}
		}
	}
	return out
}

func limousineLayout() SeatLayout {
	layout := SeatLayout{Rows: 4, Columns: 4, Floors: 1}
	for _, row := range []string{"A", "B", "C", "D"} {
		layout.Layout = append(layout.Layout, []string{row + "1", row + "2", "aisle", row + "3"})
	}
	layout.TotalSeats = 12
	return layout
}

// seedCatalog installs two routes, one bus and two trips departing tomorrow.
func (s *Server) seedCatalog() {
	now := time.Now().UTC()
	day := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

	bus := &Bus{ID: uuid.NewString(), LicensePlate: "29B-123.45", BusType: "limousine", OperatorName: "Sao Viet",
		SeatLayout: limousineLayout(), Amenities: []string{"wifi", "ac"}, Status: "active", CreatedAt: now, UpdatedAt: now}
	s.buses[bus.ID] = bus

	for _, rt := range []struct {
		from, to       string
		distance, base float64
		depart, hours  int
	}{
		{"Hanoi", "Ho Chi Minh", 1710, 850000, 8, 32},
		{"Hanoi", "Da Nang", 764, 450000, 20, 14},
	} {
		route := &Route{ID: uuid.NewString(), Name: rt.from + " - " + rt.to, FromCity: rt.from, ToCity: rt.to,
			Distance: rt.distance, BasePrice: rt.base, IsActive: true, CreatedAt: now, UpdatedAt: now}
		s.routes[route.ID] = route

		dep := day.Add(time.Duration(rt.depart) * time.Hour)
		trip := &Trip{ID: uuid.NewString(), BusID: bus.ID, RouteID: route.ID, DepartureTime: dep,
			ArrivalTime: dep.Add(time.Duration(rt.hours) * time.Hour), Duration: rt.hours * 60,
			Price: rt.base, Status: "scheduled", DriverName: "Nguyen Van A"}
		s.trips[trip.ID] = trip
		s.seats[trip.ID] = seatsFor(trip.ID, bus.SeatLayout)
	}
}

// paginate applies the page and limit query parameters. limit defaults to 10
// and is capped at 100.
func paginate[T any](r *http.Request, items []T) []T {
	page, limit := 1, 10
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	start := min((page-1)*limit, len(items))
	end := min(start+limit, len(items))
	return items[start:end]
}
