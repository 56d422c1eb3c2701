// Package bookings is a typed SDK for the bus-booking API.
//
// It sits on top of any Doer, normally a *goAuthClient.Client, so every call
// inherits bearer-token attachment and 401 recovery:
//
//	api := bookings.New(client)
//	trips, err := api.SearchTrips(ctx, bookings.TripQuery{FromCity: "Hanoi", ToCity: "Da Nang"})
//
// Admin calls require an admin session; the backend answers 403 otherwise and the
// error comes back as a *goAuthClient.APIError.
//
// FilterTrips, SortTrips and SeatMap work on data already fetched and make no
// requests.
package bookings
