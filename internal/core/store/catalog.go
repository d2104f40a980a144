package store

import (
	"fmt"
	"iter"
	"sync"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

type CatalogStore struct {
	order  []string
	trains map[string]*trainSlot
}

type trainSlot struct {
	mu    sync.RWMutex
	train domain.Train
	// version counts seat changes on this train.
	version uint64
}

func NewCatalogStore(trains []domain.Train) (*CatalogStore, error) {
	c := &CatalogStore{
		order:  make([]string, 0, len(trains)),
		trains: make(map[string]*trainSlot, len(trains)),
	}

	for i := range trains {
		if err := trains[i].Validate(); err != nil {
			return nil, err
		}

		if _, dup := c.trains[trains[i].ID]; dup {
			return nil, fmt.Errorf("%w: duplicate train id %s", domain.ErrInvalidInput, trains[i].ID)
		}

		c.order = append(c.order, trains[i].ID)
		c.trains[trains[i].ID] = &trainSlot{train: trains[i].Clone()}
	}

	return c, nil
}

func (c *CatalogStore) Len() int {
	return len(c.order)
}

func (c *CatalogStore) Train(id string) (domain.Train, error) {
	slot, ok := c.trains[id]
	if !ok {
		return domain.Train{}, domain.ErrTrainNotFound
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()

	return slot.train.Clone(), nil
}

// Search yields, in catalog order, every train whose route contains both
// stations. Direction is not checked. Each iteration reads the current
// catalog again.
func (c *CatalogStore) Search(source, destination string) iter.Seq[domain.Train] {
	return c.filter(func(t *domain.Train) bool {
		return t.ServesBoth(source, destination)
	})
}

func (c *CatalogStore) All() iter.Seq[domain.Train] {
	return c.filter(func(*domain.Train) bool { return true })
}

func (c *CatalogStore) filter(match func(*domain.Train) bool) iter.Seq[domain.Train] {
	return func(yield func(domain.Train) bool) {
		for _, id := range c.order {
			slot := c.trains[id]

			slot.mu.RLock()
			ok := match(&slot.train)
			var train domain.Train
			if ok {
				train = slot.train.Clone()
			}
			slot.mu.RUnlock()

			if ok && !yield(train) {
				return
			}
		}
	}
}

func (c *CatalogStore) Availability(id string) (*domain.SeatAvailability, error) {
	availability, _, err := c.VersionedAvailability(id)

	return availability, err
}

// VersionedAvailability also returns the train's seat version at the
// moment of the snapshot. Compare it with Version to tell whether the
// snapshot is still current.
func (c *CatalogStore) VersionedAvailability(id string) (*domain.SeatAvailability, uint64, error) {
	slot, ok := c.trains[id]
	if !ok {
		return nil, 0, domain.ErrTrainNotFound
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()

	return &domain.SeatAvailability{
		TrainID: id,
		Free:    slot.train.Seats.Count(domain.SeatFree),
		Booked:  slot.train.Seats.Count(domain.SeatBooked),
		Seats:   slot.train.Seats.Clone(),
	}, slot.version, nil
}

// Version is bumped by every successful Reserve and Release.
func (c *CatalogStore) Version(id string) (uint64, error) {
	slot, ok := c.trains[id]
	if !ok {
		return 0, domain.ErrTrainNotFound
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()

	return slot.version, nil
}

// Reserve is the atomic Free -> Booked test-and-set on one seat.
func (c *CatalogStore) Reserve(id string, row, col int) error {
	slot, ok := c.trains[id]
	if !ok {
		return domain.ErrTrainNotFound
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if err := slot.train.Seats.Book(row, col); err != nil {
		return err
	}
	slot.version++

	return nil
}

func (c *CatalogStore) Release(id string, row, col int) error {
	slot, ok := c.trains[id]
	if !ok {
		return domain.ErrTrainNotFound
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if err := slot.train.Seats.Release(row, col); err != nil {
		return err
	}
	slot.version++

	return nil
}

// Reconcile marks the seat of every persisted ticket as booked. The
// catalog file is never rewritten, so occupancy is rebuilt from the
// accounts on every start.
func (c *CatalogStore) Reconcile(users []domain.User) error {
	for _, u := range users {
		for _, t := range u.Tickets {
			if err := c.Reserve(t.TrainID, t.SeatRow, t.SeatCol); err != nil {
				return fmt.Errorf("%w: ticket %s (train %s seat %d/%d): %v",
					domain.ErrInconsistentState, t.ID, t.TrainID, t.SeatRow, t.SeatCol, err)
			}
		}
	}

	return nil
}
