package model

import (
	"sort"
	"strconv"
	"strings"
)

// SeatsPerRow is the number of seats generated per row. Seat codes are
// composed of a row letter and a 1-based column number, e.g. "A1".."A10",
// then "B1" and so on; rows beyond "Z" continue with "AA", "AB", etc.
const SeatsPerRow = 10

// SeatMap is the per-session availability table keyed by seat code. The
// boolean value is true while the seat is available and false once it is
// occupied. Occupancy counts are always derived from the map, never
// stored alongside it. A SeatMap is not safe for concurrent use; the
// engines guard every mutation with the owning session's exclusive scope.
type SeatMap map[string]bool

// GenerateSeatMap builds the seat map for a freshly created session.
// Exactly capacity seats are generated following the row-letter/column-
// number scheme. A non-positive capacity yields an empty map.
func GenerateSeatMap(capacity int) SeatMap {
	m := make(SeatMap, capacity)
	for i := 0; i < capacity; i++ {
		row := rowLabelFor(i / SeatsPerRow)
		col := i%SeatsPerRow + 1
		m[row+strconv.Itoa(col)] = true
	}
	return m
}

// Reserve flips a seat from available to occupied. It returns
// ErrSeatUnavailable when the code was never generated for this session
// or the seat is already occupied. No other seat is touched.
func (m SeatMap) Reserve(code string) error {
	avail, ok := m[code]
	if !ok || !avail {
		return ErrSeatUnavailable
	}
	m[code] = false
	return nil
}

// Release flips a seat from occupied back to available. Releasing a seat
// that is already available returns ErrInvalidSeatState instead of being
// a no-op, because it indicates a bookkeeping error in the caller.
// Unknown codes return ErrUnknownSeat.
func (m SeatMap) Release(code string) error {
	avail, ok := m[code]
	if !ok {
		return ErrUnknownSeat
	}
	if avail {
		return ErrInvalidSeatState
	}
	m[code] = true
	return nil
}

// IsAvailable reports whether the seat is currently available. It
// returns ErrUnknownSeat for codes outside the generated range.
func (m SeatMap) IsAvailable(code string) (bool, error) {
	avail, ok := m[code]
	if !ok {
		return false, ErrUnknownSeat
	}
	return avail, nil
}

// AvailableCount derives the number of available seats.
func (m SeatMap) AvailableCount() int {
	n := 0
	for _, avail := range m {
		if avail {
			n++
		}
	}
	return n
}

// OccupiedCount derives the number of occupied seats.
func (m SeatMap) OccupiedCount() int {
	return len(m) - m.AvailableCount()
}

// Codes returns every seat code in row/column order so that seat lists
// render deterministically.
func (m SeatMap) Codes() []string {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	SortSeatCodes(codes)
	return codes
}

// OccupiedCodes returns the occupied seat codes in row/column order.
func (m SeatMap) OccupiedCodes() []string {
	codes := make([]string, 0, len(m))
	for c, avail := range m {
		if !avail {
			codes = append(codes, c)
		}
	}
	SortSeatCodes(codes)
	return codes
}

// Clone returns an independent copy of the seat map.
func (m SeatMap) Clone() SeatMap {
	cp := make(SeatMap, len(m))
	for c, avail := range m {
		cp[c] = avail
	}
	return cp
}

// SortSeatCodes orders seat codes by row label (shorter labels first,
// then alphabetically) and column number, matching the order in which
// GenerateSeatMap produced them.
func SortSeatCodes(codes []string) {
	sort.Slice(codes, func(i, j int) bool {
		ri, ni := splitSeatCode(codes[i])
		rj, nj := splitSeatCode(codes[j])
		if len(ri) != len(rj) {
			return len(ri) < len(rj)
		}
		if ri != rj {
			return ri < rj
		}
		return ni < nj
	})
}

// rowLabelFor converts a zero-based row index into an alphabetical label
// like A, B, ..., Z, AA, AB.
func rowLabelFor(i int) string {
	if i < 0 {
		return ""
	}
	var res []rune
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for a, b := 0, len(res)-1; a < b; a, b = a+1, b-1 {
		res[a], res[b] = res[b], res[a]
	}
	return string(res)
}

// splitSeatCode separates a seat code into its row label and column
// number. Codes that do not follow the generated scheme sort by their
// raw string with column 0.
func splitSeatCode(code string) (string, int) {
	i := strings.IndexFunc(code, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return code, 0
	}
	n, err := strconv.Atoi(code[i:])
	if err != nil {
		return code, 0
	}
	return code[:i], n
}
