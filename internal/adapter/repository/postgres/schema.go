package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	position      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tickets (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	train_id    TEXT NOT NULL,
	source      TEXT NOT NULL,
	destination TEXT NOT NULL,
	travel_date TEXT NOT NULL,
	seat_row    INTEGER NOT NULL CHECK (seat_row >= 0),
	seat_col    INTEGER NOT NULL CHECK (seat_col >= 0),
	position    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trains (
	id           TEXT PRIMARY KEY,
	train_number TEXT NOT NULL,
	stations     TEXT[] NOT NULL,
	departures   TEXT[] NOT NULL,
	position     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS train_seats (
	train_id    TEXT NOT NULL REFERENCES trains (id) ON DELETE CASCADE,
	row_number  INTEGER NOT NULL CHECK (row_number >= 0),
	seat_number INTEGER NOT NULL CHECK (seat_number >= 0),
	status      SMALLINT NOT NULL DEFAULT 0 CHECK (status IN (0, 1)),
	PRIMARY KEY (train_id, row_number, seat_number)
);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}
