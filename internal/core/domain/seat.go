package domain

type SeatState int

const (
	SeatFree   SeatState = 0
	SeatBooked SeatState = 1
)

// SeatMatrix is a train's occupancy grid. Its shape is fixed once the
// catalog is loaded; rows may differ in length.
type SeatMatrix [][]SeatState

func (m SeatMatrix) InRange(row, col int) bool {
	return row >= 0 && row < len(m) && col >= 0 && col < len(m[row])
}

func (m SeatMatrix) IsAvailable(row, col int) bool {
	return m.InRange(row, col) && m[row][col] == SeatFree
}

// Book flips a free cell to booked. It validates before mutating so the
// matrix is untouched on every error path.
func (m SeatMatrix) Book(row, col int) error {
	if !m.InRange(row, col) {
		return ErrSeatOutOfRange
	}

	if m[row][col] != SeatFree {
		return ErrSeatUnavailable
	}

	m[row][col] = SeatBooked

	return nil
}

func (m SeatMatrix) Release(row, col int) error {
	if !m.InRange(row, col) {
		return ErrSeatOutOfRange
	}

	if m[row][col] != SeatBooked {
		return ErrSeatNotBooked
	}

	m[row][col] = SeatFree

	return nil
}

func (m SeatMatrix) Count(state SeatState) int {
	n := 0
	for _, row := range m {
		for _, seat := range row {
			if seat == state {
				n++
			}
		}
	}

	return n
}

func (m SeatMatrix) Clone() SeatMatrix {
	if m == nil {
		return nil
	}

	out := make(SeatMatrix, len(m))
	for i, row := range m {
		out[i] = append([]SeatState(nil), row...)
	}

	return out
}

type SeatAvailability struct {
	TrainID string     `json:"trainId"`
	Free    int        `json:"free"`
	Booked  int        `json:"booked"`
	Seats   SeatMatrix `json:"seats"`
}
