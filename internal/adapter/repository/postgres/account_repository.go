package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

// AccountRepository stores the account set in Postgres. Each commit
// replaces the whole snapshot inside one transaction.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Load(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, password_hash
	FROM users
	ORDER BY position
	`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	users := []domain.User{}
	index := map[string]int{}
	for rows.Next() {
		u := domain.User{Tickets: []domain.Ticket{}}
		if err := rows.Scan(&u.ID, &u.Name, &u.PasswordHash); err != nil {
			return nil, err
		}

		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ticketRows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, train_id, source, destination, travel_date, seat_row, seat_col
	FROM tickets
	ORDER BY user_id, position
	`)
	if err != nil {
		return nil, err
	}

	defer ticketRows.Close()

	for ticketRows.Next() {
		var t domain.Ticket
		if err := ticketRows.Scan(&t.ID, &t.UserID, &t.TrainID, &t.Source, &t.Destination, &t.TravelDate, &t.SeatRow, &t.SeatCol); err != nil {
			return nil, err
		}

		i, ok := index[t.UserID]
		if !ok {
			return nil, fmt.Errorf("%w: ticket %s references unknown user %s", domain.ErrInconsistentState, t.ID, t.UserID)
		}

		users[i].Tickets = append(users[i].Tickets, t)
	}

	return users, ticketRows.Err()
}

func (r *AccountRepository) Commit(ctx context.Context, users []domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
		return fmt.Errorf("failed to clear tickets: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	userStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO users (id, name, password_hash, position)
	VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare user statement: %w", err)
	}

	defer userStmt.Close()

	ticketStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO tickets (id, user_id, train_id, source, destination, travel_date, seat_row, seat_col, position)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare ticket statement: %w", err)
	}

	defer ticketStmt.Close()

	for i, u := range users {
		if _, err := userStmt.ExecContext(ctx, u.ID, u.Name, u.PasswordHash, i); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}

		for j, t := range u.Tickets {
			_, err := ticketStmt.ExecContext(ctx, t.ID, t.UserID, t.TrainID, t.Source, t.Destination, t.TravelDate, t.SeatRow, t.SeatCol, j)
			if err != nil {
				return fmt.Errorf("failed to insert ticket %s: %w", t.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
