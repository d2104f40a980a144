package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

// AccountFile keeps the account set in a single file, JSON by default or
// CBOR when the path ends in ".cbor".
type AccountFile struct {
	path   string
	codec  codec
	logger *slog.Logger

	mu sync.Mutex
}

func NewAccountFile(path string, logger *slog.Logger) *AccountFile {
	return &AccountFile{
		path:   path,
		codec:  codecFor(path),
		logger: logger,
	}
}

func (f *AccountFile) Path() string {
	return f.path
}

func (f *AccountFile) Load(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.logger.Info("account file not found, starting empty", "path", f.path)
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	var users []domain.User
	if err := f.codec.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.path, err)
	}

	if users == nil {
		users = []domain.User{}
	}
	for i := range users {
		if users[i].Tickets == nil {
			users[i].Tickets = []domain.Ticket{}
		}
	}

	return users, nil
}

func (f *AccountFile) Commit(ctx context.Context, users []domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := f.codec.Marshal(users)
	if err != nil {
		return fmt.Errorf("encoding accounts: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeAtomic(f.path, data, 0600); err != nil {
		return err
	}

	f.logger.Debug("accounts committed", "path", f.path, "users", len(users), "bytes", len(data))

	return nil
}
