package domain

import (
	"fmt"
	"slices"
)

type Train struct {
	ID          string            `json:"id"`
	TrainNumber string            `json:"trainNumber"`
	Stations    []string          `json:"stations"`
	StationTime map[string]string `json:"stationTime"`
	Seats       SeatMatrix        `json:"seats"`
}

func (t *Train) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: train without id", ErrInvalidInput)
	}

	if len(t.Stations) < 2 {
		return fmt.Errorf("%w: train %s needs at least two stations", ErrInvalidInput, t.ID)
	}

	for _, station := range t.Stations {
		if _, ok := t.StationTime[station]; !ok {
			return fmt.Errorf("%w: train %s has no time for station %q", ErrInvalidInput, t.ID, station)
		}
	}

	return nil
}

func (t *Train) Serves(station string) bool {
	return slices.Contains(t.Stations, station)
}

// ServesBoth reports whether both stations are on the route, in any order.
func (t *Train) ServesBoth(source, destination string) bool {
	return t.Serves(source) && t.Serves(destination)
}

func (t *Train) DepartureTime(station string) (string, bool) {
	if !t.Serves(station) {
		return "", false
	}

	v, ok := t.StationTime[station]

	return v, ok
}

// ArrivalTime returns the time at the stop following station, or the
// station's own time when it is the terminus.
func (t *Train) ArrivalTime(station string) (string, bool) {
	i := slices.Index(t.Stations, station)
	if i < 0 {
		return "", false
	}

	if i < len(t.Stations)-1 {
		i++
	}

	v, ok := t.StationTime[t.Stations[i]]

	return v, ok
}

func (t *Train) AvailableSeats() int {
	return t.Seats.Count(SeatFree)
}

func (t *Train) Clone() Train {
	out := *t
	out.Stations = slices.Clone(t.Stations)
	out.StationTime = make(map[string]string, len(t.StationTime))
	for k, v := range t.StationTime {
		out.StationTime[k] = v
	}
	out.Seats = t.Seats.Clone()

	return out
}
