package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/store"
)

type BookRequest struct {
	UserID      string `json:"user_id"`
	TrainID     string `json:"train_id"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	TravelDate  string `json:"travel_date,omitempty"`
}

// BookingService is the only writer of seat occupancy and ticket lists.
// Booking and cancellation run one at a time, each together with its
// account commit.
type BookingService struct {
	backend *Backend

	mu sync.Mutex
}

func NewBookingService(backend *Backend) *BookingService {
	backend.withDefaults()

	return &BookingService{backend: backend}
}

func (s *BookingService) BookSeat(ctx context.Context, req BookRequest) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	train, err := s.backend.Catalog.Train(req.TrainID)
	if err != nil {
		return nil, err
	}

	if _, err := s.backend.Accounts.UserByID(req.UserID); err != nil {
		return nil, err
	}

	if !train.Seats.InRange(req.Row, req.Col) {
		return nil, fmt.Errorf("%w: row %d seat %d on train %s", domain.ErrSeatOutOfRange, req.Row, req.Col, train.ID)
	}

	source, destination, err := resolveRoute(&train, req.Source, req.Destination)
	if err != nil {
		return nil, err
	}

	travelDate, err := s.resolveTravelDate(req.TravelDate)
	if err != nil {
		return nil, err
	}

	if err := s.backend.Catalog.Reserve(train.ID, req.Row, req.Col); err != nil {
		return nil, err
	}

	ticket := domain.Ticket{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		TrainID:     train.ID,
		Source:      source,
		Destination: destination,
		TravelDate:  travelDate,
		SeatRow:     req.Row,
		SeatCol:     req.Col,
	}

	err = s.backend.Accounts.Apply(ctx, s.backend.Gateway, func(a *store.Accounts) error {
		return a.AppendTicket(ticket)
	})
	if err != nil {
		s.rollbackReserve(train.ID, req.Row, req.Col)
		s.backend.invalidateSeats(ctx, train.ID)
		s.backend.Logger.Error("booking rolled back",
			"user_id", req.UserID, "train_id", train.ID, "row", req.Row, "col", req.Col, "error", err)
		return nil, err
	}

	s.backend.invalidateSeats(ctx, train.ID)
	s.backend.Logger.Info("seat booked",
		"ticket_id", ticket.ID, "user_id", ticket.UserID, "train_id", ticket.TrainID, "row", ticket.SeatRow, "col", ticket.SeatCol)

	return &ticket, nil
}

// CancelTicket only finds tickets in userID's own list.
func (s *BookingService) CancelTicket(ctx context.Context, userID, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed domain.Ticket
	seatReleased := false

	err := s.backend.Accounts.Apply(ctx, s.backend.Gateway, func(a *store.Accounts) error {
		var err error
		removed, err = a.RemoveTicket(userID, ticketID)
		if err != nil {
			return err
		}

		if err := s.backend.Catalog.Release(removed.TrainID, removed.SeatRow, removed.SeatCol); err != nil {
			return fmt.Errorf("%w: ticket %s: %v", domain.ErrInconsistentState, ticketID, err)
		}
		seatReleased = true

		return nil
	})
	if err != nil {
		if seatReleased {
			s.rollbackRelease(removed.TrainID, removed.SeatRow, removed.SeatCol)
			s.backend.invalidateSeats(ctx, removed.TrainID)
			s.backend.Logger.Error("cancellation rolled back",
				"user_id", userID, "ticket_id", ticketID, "error", err)
		}
		return err
	}

	s.backend.invalidateSeats(ctx, removed.TrainID)
	s.backend.Logger.Info("ticket cancelled",
		"ticket_id", ticketID, "user_id", userID, "train_id", removed.TrainID)

	return nil
}

func (s *BookingService) ListTickets(userID string) ([]domain.Ticket, error) {
	return s.backend.Accounts.Tickets(userID)
}

// Writers are serialized by s.mu, so nothing can have claimed or freed
// the seat between the failed commit and these compensations. Callers
// invalidate the seat cache afterwards, since readers may have cached
// the uncommitted state.
func (s *BookingService) rollbackReserve(trainID string, row, col int) {
	if err := s.backend.Catalog.Release(trainID, row, col); err != nil {
		s.backend.Logger.Error("failed to release seat during rollback", "train_id", trainID, "row", row, "col", col, "error", err)
	}
}

func (s *BookingService) rollbackRelease(trainID string, row, col int) {
	if err := s.backend.Catalog.Reserve(trainID, row, col); err != nil {
		s.backend.Logger.Error("failed to re-book seat during rollback", "train_id", trainID, "row", row, "col", col, "error", err)
	}
}

func resolveRoute(train *domain.Train, source, destination string) (string, string, error) {
	if source == "" {
		source = train.Stations[0]
	}

	if destination == "" {
		destination = train.Stations[len(train.Stations)-1]
	}

	for _, station := range []string{source, destination} {
		if !train.Serves(station) {
			return "", "", fmt.Errorf("%w: %s does not stop at %q", domain.ErrInvalidRoute, train.ID, station)
		}
	}

	return source, destination, nil
}

func (s *BookingService) resolveTravelDate(date string) (string, error) {
	if date == "" {
		return s.backend.Now().Format(domain.TravelDateLayout), nil
	}

	if _, err := time.Parse(domain.TravelDateLayout, date); err != nil {
		return "", fmt.Errorf("%w: travel date %q is not YYYY-MM-DD", domain.ErrInvalidInput, date)
	}

	return date, nil
}
