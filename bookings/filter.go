package bookings

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// TripFilter narrows an already fetched trip list. Zero fields match everything.
type TripFilter struct {
	MinPrice     float64
	MaxPrice     float64
	DepartAfter  time.Time
	DepartBefore time.Time
	BusTypes     []string // matched case-insensitively against Trip.Bus.BusType
	Statuses     []TripStatus
	Amenities    []string // every listed amenity must be present
}

func (f TripFilter) match(t Trip) bool {
	if f.MinPrice > 0 && t.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && t.Price > f.MaxPrice {
		return false
	}
	if !f.DepartAfter.IsZero() && t.DepartureTime.Before(f.DepartAfter) {
		return false
	}
	if !f.DepartBefore.IsZero() && !t.DepartureTime.Before(f.DepartBefore) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.BusTypes) > 0 {
		if t.Bus == nil || !slices.ContainsFunc(f.BusTypes, func(bt string) bool {
			return strings.EqualFold(bt, t.Bus.BusType)
		}) {
			return false
		}
	}
	for _, want := range f.Amenities {
		if t.Bus == nil || !slices.ContainsFunc(t.Bus.Amenities, func(a string) bool {
			return strings.EqualFold(a, want)
		}) {
			return false
		}
	}
	return true
}

// FilterTrips returns the trips matching f, in input order. The input is not modified.
func FilterTrips(trips []Trip, f TripFilter) []Trip {
	out := make([]Trip, 0, len(trips))
	for _, t := range trips {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

type SortKey int

const (
	SortByDeparture SortKey = iota
	SortByPrice
	SortByDuration
	SortByArrival
)

// SortTrips sorts trips in place by key. Ties fall back to departure time, then ID,
// both ascending.
func SortTrips(trips []Trip, key SortKey, descending bool) {
	slices.SortStableFunc(trips, func(a, b Trip) int {
		c := compareTrips(key, a, b)
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = a.DepartureTime.Compare(b.DepartureTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func compareTrips(key SortKey, a, b Trip) int {
	switch key {
	case SortByPrice:
		return cmp.Compare(a.Price, b.Price)
	case SortByDuration:
		return cmp.Compare(a.Duration, b.Duration)
	case SortByArrival:
		return a.ArrivalTime.Compare(b.ArrivalTime)
	default:
		return a.DepartureTime.Compare(b.DepartureTime)
	}
}
