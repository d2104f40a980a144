package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

// CatalogRepository reads trains from Postgres. The stored seat status
// is the baseline occupancy; bookings are layered on top at startup.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) LoadTrains(ctx context.Context) ([]domain.Train, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, train_number, stations, departures
	FROM trains
	ORDER BY position
	`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var trains []domain.Train
	index := map[string]int{}
	for rows.Next() {
		var train domain.Train
		var departures []string
		if err := rows.Scan(&train.ID, &train.TrainNumber, pq.Array(&train.Stations), pq.Array(&departures)); err != nil {
			return nil, err
		}

		if len(departures) != len(train.Stations) {
			return nil, fmt.Errorf("train %s: %d stations but %d departure times", train.ID, len(train.Stations), len(departures))
		}

		train.StationTime = make(map[string]string, len(train.Stations))
		for i, station := range train.Stations {
			train.StationTime[station] = departures[i]
		}

		index[train.ID] = len(trains)
		trains = append(trains, train)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seatRows, err := r.db.QueryContext(ctx, `
	SELECT train_id, row_number, seat_number, status
	FROM train_seats
	ORDER BY train_id, row_number, seat_number
	`)
	if err != nil {
		return nil, err
	}

	defer seatRows.Close()

	for seatRows.Next() {
		var trainID string
		var row, col int
		var status domain.SeatState
		if err := seatRows.Scan(&trainID, &row, &col, &status); err != nil {
			return nil, err
		}

		i, ok := index[trainID]
		if !ok {
			continue
		}

		trains[i].Seats, err = placeSeat(trains[i].Seats, row, col, status)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", trainID, err)
		}
	}

	return trains, seatRows.Err()
}

// placeSeat grows the matrix as needed; rows are read in order so the
// final shape follows the highest row and seat numbers present.
func placeSeat(m domain.SeatMatrix, row, col int, status domain.SeatState) (domain.SeatMatrix, error) {
	if row < 0 || col < 0 {
		return m, fmt.Errorf("%w: seat %d/%d has a negative coordinate", domain.ErrInvalidInput, row, col)
	}

	if status != domain.SeatFree && status != domain.SeatBooked {
		return m, fmt.Errorf("%w: seat %d/%d has status %d", domain.ErrInvalidInput, row, col, status)
	}

	for len(m) <= row {
		m = append(m, nil)
	}

	for len(m[row]) <= col {
		m[row] = append(m[row], domain.SeatFree)
	}

	m[row][col] = status

	return m, nil
}
