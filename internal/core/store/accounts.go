package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jinzhu/copier"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/ports"
)

type AccountStore struct {
	applyMu sync.Mutex

	mu    sync.RWMutex
	users []domain.User
}

func NewAccountStore(users []domain.User) (*AccountStore, error) {
	draft, err := cloneUsers(users)
	if err != nil {
		return nil, err
	}

	accounts := &Accounts{}
	ticketIDs := make(map[string]struct{})
	for _, u := range draft {
		if err := u.Validate(); err != nil {
			return nil, err
		}

		for _, t := range u.Tickets {
			if _, dup := ticketIDs[t.ID]; dup {
				return nil, fmt.Errorf("%w: ticket %s appears twice", domain.ErrInconsistentState, t.ID)
			}
			ticketIDs[t.ID] = struct{}{}
		}

		if err := accounts.Add(u); err != nil {
			return nil, fmt.Errorf("loading user %s: %w", u.ID, err)
		}
	}

	return &AccountStore{users: accounts.users}, nil
}

func (s *AccountStore) UserByID(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, domain.ErrUserNotFound
	}

	return cloneUser(s.users[i]), nil
}

func (s *AccountStore) UserByName(name string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.users, func(u domain.User) bool { return u.Name == name })
	if i < 0 {
		return domain.User{}, false
	}

	return cloneUser(s.users[i]), true
}

func (s *AccountStore) Tickets(userID string) ([]domain.Ticket, error) {
	u, err := s.UserByID(userID)
	if err != nil {
		return nil, err
	}

	return u.Tickets, nil
}

func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users)
}

func (s *AccountStore) Snapshot() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneUsers(s.users)
}

// Apply runs mutate against a private copy of the account set, commits
// that copy through gateway and publishes it only once the commit
// succeeded. Calls are serialized. A mutate error or a failed commit
// leaves the published state untouched; commit failures come back as
// *domain.PersistenceError.
func (s *AccountStore) Apply(ctx context.Context, gateway ports.AccountGateway, mutate func(*Accounts) error) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.RLock()
	draft, err := cloneUsers(s.users)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	accounts := &Accounts{users: draft}
	if err := mutate(accounts); err != nil {
		return err
	}

	if err := gateway.Commit(ctx, accounts.users); err != nil {
		return &domain.PersistenceError{Op: "commit accounts", Err: err}
	}

	s.mu.Lock()
	s.users = accounts.users
	s.mu.Unlock()

	return nil
}

// Accounts is the mutable view handed to Apply.
type Accounts struct {
	users []domain.User
}

func (a *Accounts) index(userID string) int {
	return slices.IndexFunc(a.users, func(u domain.User) bool { return u.ID == userID })
}

func (a *Accounts) Add(user domain.User) error {
	for _, u := range a.users {
		if u.Name == user.Name {
			return domain.ErrNameTaken
		}
		if u.ID == user.ID {
			return fmt.Errorf("%w: duplicate user id %s", domain.ErrInconsistentState, user.ID)
		}
	}

	if user.Tickets == nil {
		user.Tickets = []domain.Ticket{}
	}
	a.users = append(a.users, user)

	return nil
}

func (a *Accounts) AppendTicket(ticket domain.Ticket) error {
	i := a.index(ticket.UserID)
	if i < 0 {
		return domain.ErrUserNotFound
	}

	a.users[i].Tickets = append(a.users[i].Tickets, ticket)

	return nil
}

// RemoveTicket drops ticketID from userID's list only; a ticket held by
// another user is reported as not found.
func (a *Accounts) RemoveTicket(userID, ticketID string) (domain.Ticket, error) {
	i := a.index(userID)
	if i < 0 {
		return domain.Ticket{}, domain.ErrUserNotFound
	}

	tickets := a.users[i].Tickets
	j := slices.IndexFunc(tickets, func(t domain.Ticket) bool { return t.ID == ticketID })
	if j < 0 {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}

	removed := tickets[j]
	a.users[i].Tickets = slices.Delete(tickets, j, j+1)

	return removed, nil
}

func cloneUser(u domain.User) domain.User {
	u.Tickets = slices.Clone(u.Tickets)
	if u.Tickets == nil {
		u.Tickets = []domain.Ticket{}
	}

	return u
}

func cloneUsers(users []domain.User) ([]domain.User, error) {
	if len(users) == 0 {
		return []domain.User{}, nil
	}

	out := make([]domain.User, 0, len(users))
	if err := copier.CopyWithOption(&out, users, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copying accounts: %w", err)
	}

	for i := range out {
		if out[i].Tickets == nil {
			out[i].Tickets = []domain.Ticket{}
		}
	}

	return out, nil
}
