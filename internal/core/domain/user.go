package domain

import (
	"fmt"
	"slices"
)

type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"passwordHash"`
	Tickets      []Ticket `json:"tickets"`
}

func (u *User) FindTicket(ticketID string) (Ticket, bool) {
	i := slices.IndexFunc(u.Tickets, func(t Ticket) bool { return t.ID == ticketID })
	if i < 0 {
		return Ticket{}, false
	}

	return u.Tickets[i], true
}

// Validate checks that every ticket the user holds is owned by the user.
func (u *User) Validate() error {
	if u.ID == "" || u.Name == "" {
		return fmt.Errorf("%w: user without id or name", ErrInvalidInput)
	}

	for _, t := range u.Tickets {
		if t.UserID != u.ID {
			return fmt.Errorf("%w: ticket %s listed under user %s belongs to %s", ErrInconsistentState, t.ID, u.ID, t.UserID)
		}
	}

	return nil
}
