package bookings

import (
	"errors"
	"slices"
	"strings"
)

// CellKind classifies a seat map cell.
type CellKind int

const (
	CellSeat CellKind = iota
	CellAisle
	CellEmpty
)

// SeatCell is one position of a seat map.
type SeatCell struct {
	Kind   CellKind
	Number string     // set for CellSeat
	Status SeatStatus // availability; seats without data are available
}

// Selectable reports whether the cell is a seat that can be picked.
func (c SeatCell) Selectable() bool {
	return c.Kind == CellSeat && c.Status == SeatStatusAvailable
}

// SeatMap overlays trip seat availability on a bus layout. It returns one grid
// row per layout row; cells keep the layout's column positions.
func SeatMap(layout SeatLayout, seats []Seat) [][]SeatCell {
	status := make(map[string]SeatStatus, len(seats))
	for _, s := range seats {
		status[strings.ToUpper(s.SeatNumber)] = s.Status
	}

	grid := make([][]SeatCell, 0, len(layout.Layout))
	for _, row := range layout.Layout {
		cells := make([]SeatCell, 0, len(row))
		for _, v := range row {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case LayoutAisle:
				cells = append(cells, SeatCell{Kind: CellAisle})
			case LayoutEmpty, "":
				cells = append(cells, SeatCell{Kind: CellEmpty})
			default:
				num := strings.ToUpper(strings.TrimSpace(v))
				st, ok := status[num]
				if !ok {
					st = SeatStatusAvailable
				}
				cells = append(cells, SeatCell{Kind: CellSeat, Number: num, Status: st})
			}
		}
		grid = append(grid, cells)
	}
	return grid
}

var (
	ErrSeatUnavailable = errors.New("bookings: seat is not available")
	ErrSeatUnknown     = errors.New("bookings: no such seat")
)

// SeatSelection tracks the seats a user has picked on a seat map.
type SeatSelection struct {
	grid     [][]SeatCell
	limit    int
	selected []string
}

// NewSeatSelection starts an empty selection over grid. limit <= 0 means
// MaxSeatsPerBooking.
func NewSeatSelection(grid [][]SeatCell, limit int) *SeatSelection {
	if limit <= 0 {
		limit = MaxSeatsPerBooking
	}
	return &SeatSelection{grid: grid, limit: limit}
}

// Toggle selects an available seat or deselects a selected one.
func (s *SeatSelection) Toggle(number string) error {
	number = strings.ToUpper(strings.TrimSpace(number))
	if i := slices.Index(s.selected, number); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return nil
	}

	cell, ok := s.cell(number)
	if !ok {
		return ErrSeatUnknown
	}
	if !cell.Selectable() {
		return ErrSeatUnavailable
	}
	if len(s.selected) >= s.limit {
		return ErrTooManySeats
	}
	s.selected = append(s.selected, number)
	return nil
}

// Selected returns the picked seat numbers in selection order.
func (s *SeatSelection) Selected() []string {
	return slices.Clone(s.selected)
}

func (s *SeatSelection) cell(number string) (SeatCell, bool) {
	for _, row := range s.grid {
		for _, c := range row {
			if c.Kind == CellSeat && c.Number == number {
				return c, true
			}
		}
	}
	return SeatCell{}, false
}
