package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/services"
)

func TestBookSeat_Success(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.cache.On("Invalidate", mock.Anything, "T1").Return(nil).Once()
	alice := f.signUp(t, "alice")

	ticket, err := f.booking.BookSeat(context.Background(), services.BookRequest{
		UserID:  alice.ID,
		TrainID: "T1",
		Row:     1,
		Col:     2,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, alice.ID, ticket.UserID)
	assert.Equal(t, "A", ticket.Source)
	assert.Equal(t, "C", ticket.Destination)
	assert.Equal(t, "2026-10-15", ticket.TravelDate)
	assert.Equal(t, domain.SeatBooked, f.seats(t, "T1")[1][2])

	tickets, err := f.booking.ListTickets(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Ticket{*ticket}, tickets)
}

func TestBookSeat_CommitsTheNewTicket(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed().Once()
	f.invalidationsSucceed()
	alice := f.signUp(t, "alice")

	f.gateway.On("Commit", mock.Anything, mock.MatchedBy(func(users []domain.User) bool {
		return len(users) == 1 && len(users[0].Tickets) == 1 && users[0].Tickets[0].SeatRow == 2
	})).Return(nil).Once()

	_, err := f.booking.BookSeat(context.Background(), services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: 2, Col: 0})

	require.NoError(t, err)
}

func TestBookSeat_Failures(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		req  func(userID string) services.BookRequest
		want error
	}{
		{
			name: "unknown train",
			req:  func(u string) services.BookRequest { return services.BookRequest{UserID: u, TrainID: "T9"} },
			want: domain.ErrTrainNotFound,
		},
		{
			name: "unknown user",
			req:  func(string) services.BookRequest { return services.BookRequest{UserID: "ghost", TrainID: "T1"} },
			want: domain.ErrUserNotFound,
		},
		{
			name: "row out of range",
			req:  func(u string) services.BookRequest { return services.BookRequest{UserID: u, TrainID: "T1", Row: 3} },
			want: domain.ErrSeatOutOfRange,
		},
		{
			name: "negative column",
			req:  func(u string) services.BookRequest { return services.BookRequest{UserID: u, TrainID: "T1", Col: -1} },
			want: domain.ErrSeatOutOfRange,
		},
		{
			name: "seat booked in the catalog",
			req:  func(u string) services.BookRequest { return services.BookRequest{UserID: u, TrainID: "T2", Col: 1} },
			want: domain.ErrSeatUnavailable,
		},
		{
			name: "station not on the route",
			req: func(u string) services.BookRequest {
				return services.BookRequest{UserID: u, TrainID: "T1", Source: "A", Destination: "D"}
			},
			want: domain.ErrInvalidRoute,
		},
		{
			name: "malformed travel date",
			req: func(u string) services.BookRequest {
				return services.BookRequest{UserID: u, TrainID: "T1", TravelDate: "15/10/2026"}
			},
			want: domain.ErrInvalidInput,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.commitsSucceed().Once()
			alice := f.signUp(t, "alice")
			beforeT1, beforeT2 := f.seats(t, "T1"), f.seats(t, "T2")

			ticket, err := f.booking.BookSeat(ctx, tc.req(alice.ID))

			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, ticket)
			assert.Equal(t, beforeT1, f.seats(t, "T1"))
			assert.Equal(t, beforeT2, f.seats(t, "T2"))
			tickets, _ := f.booking.ListTickets(alice.ID)
			assert.Empty(t, tickets)
		})
	}
}

func TestBookSeat_AlreadyBookedSeatIsRejectedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.invalidationsSucceed()
	ctx := context.Background()
	alice, bob := f.signUp(t, "alice"), f.signUp(t, "bob")

	_, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: "T1"})
	require.NoError(t, err)
	before := f.seats(t, "T1")

	_, err = f.booking.BookSeat(ctx, services.BookRequest{UserID: bob.ID, TrainID: "T1"})

	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
	assert.Equal(t, before, f.seats(t, "T1"))
	tickets, _ := f.booking.ListTickets(bob.ID)
	assert.Empty(t, tickets)
}

func TestBookSeat_RollsBackWhenCommitFails(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed().Once()
	alice := f.signUp(t, "alice")
	before := f.seats(t, "T1")

	f.gateway.On("Commit", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	f.cache.On("Invalidate", mock.Anything, "T1").Return(nil).Once()

	ticket, err := f.booking.BookSeat(context.Background(), services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: 0, Col: 3})

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, ticket)
	assert.Equal(t, before, f.seats(t, "T1"))
	tickets, _ := f.booking.ListTickets(alice.ID)
	assert.Empty(t, tickets)
}

func TestBookSeat_CacheFailureDoesNotFailTheBooking(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.cache.On("Invalidate", mock.Anything, "T1").Return(errors.New("connection refused"))
	alice := f.signUp(t, "alice")

	_, err := f.booking.BookSeat(context.Background(), services.BookRequest{UserID: alice.ID, TrainID: "T1"})

	assert.NoError(t, err)
}

func TestBookThenCancelRestoresMatrix(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.invalidationsSucceed()
	ctx := context.Background()
	alice := f.signUp(t, "alice")

	for _, trainID := range []string{"T1", "T2"} {
		before := f.seats(t, trainID)
		for r := range before {
			for c := range before[r] {
				if !before.IsAvailable(r, c) {
					continue
				}

				ticket, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: trainID, Row: r, Col: c})
				require.NoError(t, err)
				require.NoError(t, f.booking.CancelTicket(ctx, alice.ID, ticket.ID))

				assert.Equal(t, before, f.seats(t, trainID))
			}
		}
	}
}

func TestCancelTicket_ScenarioSeatChangesHands(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.invalidationsSucceed()
	ctx := context.Background()
	alice, bob := f.signUp(t, "alice"), f.signUp(t, "bob")

	ticket, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: 0, Col: 0})
	require.NoError(t, err)

	_, err = f.booking.BookSeat(ctx, services.BookRequest{UserID: bob.ID, TrainID: "T1", Row: 0, Col: 0})
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)

	require.NoError(t, f.booking.CancelTicket(ctx, alice.ID, ticket.ID))

	bobTicket, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: bob.ID, TrainID: "T1", Row: 0, Col: 0})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, bobTicket.UserID)

	aliceTickets, _ := f.booking.ListTickets(alice.ID)
	assert.Empty(t, aliceTickets)
}

func TestCancelTicket_OtherUsersTicketIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.invalidationsSucceed()
	ctx := context.Background()
	alice, bob := f.signUp(t, "alice"), f.signUp(t, "bob")

	ticket, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: "T1"})
	require.NoError(t, err)
	before := f.seats(t, "T1")

	err = f.booking.CancelTicket(ctx, bob.ID, ticket.ID)

	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	assert.Equal(t, before, f.seats(t, "T1"))
	aliceTickets, _ := f.booking.ListTickets(alice.ID)
	assert.Len(t, aliceTickets, 1)
}

func TestCancelTicket_UnknownTicket(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	alice := f.signUp(t, "alice")

	err := f.booking.CancelTicket(context.Background(), alice.ID, "no-such-ticket")

	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestCancelTicket_RollsBackWhenCommitFails(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed().Times(2)
	f.invalidationsSucceed()
	ctx := context.Background()
	alice := f.signUp(t, "alice")

	ticket, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: 2, Col: 1})
	require.NoError(t, err)
	before := f.seats(t, "T1")

	f.gateway.On("Commit", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	err = f.booking.CancelTicket(ctx, alice.ID, ticket.ID)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, before, f.seats(t, "T1"))
	tickets, _ := f.booking.ListTickets(alice.ID)
	assert.Equal(t, []domain.Ticket{*ticket}, tickets)
}

func TestListTickets_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.booking.ListTickets("ghost")

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestBookSeat_ConcurrentDistinctSeats(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.invalidationsSucceed()
	alice := f.signUp(t, "alice")

	type seat struct{ row, col int }
	var wanted []seat
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			wanted = append(wanted, seat{r, c})
		}
	}

	errs := make(chan error, len(wanted))
	var wg sync.WaitGroup
	for _, s := range wanted {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.booking.BookSeat(context.Background(), services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: s.row, Col: s.col})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	seats := f.seats(t, "T1")
	assert.Equal(t, len(wanted), seats.Count(domain.SeatBooked))
	tickets, _ := f.booking.ListTickets(alice.ID)
	assert.Len(t, tickets, len(wanted))
}

func TestBookSeat_ConcurrentSameSeat(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	f.invalidationsSucceed()
	alice, bob := f.signUp(t, "alice"), f.signUp(t, "bob")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, userID := range []string{alice.ID, bob.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.booking.BookSeat(context.Background(), services.BookRequest{UserID: userID, TrainID: "T1", Row: 1, Col: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, unavailable int
	for err := range errs {
		if err == nil {
			ok++
		} else if errors.Is(err, domain.ErrSeatUnavailable) {
			unavailable++
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, 1, f.seats(t, "T1").Count(domain.SeatBooked))
}

func TestBookSeat_FailedCommitDoesNotLeaveBookedSeatInCache(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed().Once()
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	f.backend.Cache = newMemCache()

	f.gateway.On("Commit", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			during, err := f.search.SeatAvailability(ctx, "T1")
			require.NoError(t, err)
			assert.Equal(t, domain.SeatBooked, during.Seats[0][0])
		}).
		Return(errors.New("disk full")).Once()

	_, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: 0, Col: 0})
	require.ErrorIs(t, err, domain.ErrPersistence)

	served, err := f.search.SeatAvailability(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatFree, served.Seats[0][0])
	assert.Equal(t, 0, served.Booked)
	assert.Equal(t, f.seats(t, "T1"), served.Seats)
}

func TestCancelTicket_FailedCommitDoesNotLeaveFreedSeatInCache(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed().Times(2)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	f.backend.Cache = newMemCache()

	ticket, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: 1, Col: 1})
	require.NoError(t, err)

	f.gateway.On("Commit", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			during, err := f.search.SeatAvailability(ctx, "T1")
			require.NoError(t, err)
			assert.Equal(t, domain.SeatFree, during.Seats[1][1])
		}).
		Return(errors.New("disk full")).Once()

	err = f.booking.CancelTicket(ctx, alice.ID, ticket.ID)
	require.ErrorIs(t, err, domain.ErrPersistence)

	served, err := f.search.SeatAvailability(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatBooked, served.Seats[1][1])
	assert.Equal(t, 1, served.Booked)
}

func TestSeatAvailability_FillOvertakenByBookingIsDropped(t *testing.T) {
	f := newFixture(t)
	f.commitsSucceed()
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	cache := newMemCache()
	f.backend.Cache = cache

	// The booking lands between the reader's catalog snapshot and its
	// cache write, after the booking's own invalidation ran.
	cache.beforeSet = func() {
		_, err := f.booking.BookSeat(ctx, services.BookRequest{UserID: alice.ID, TrainID: "T1", Row: 0, Col: 0})
		require.NoError(t, err)
	}

	stale, err := f.search.SeatAvailability(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatFree, stale.Seats[0][0])

	served, err := f.search.SeatAvailability(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatBooked, served.Seats[0][0])
	assert.Equal(t, 1, served.Booked)
}
