package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/store"
)

type AuthService struct {
	backend *Backend
	cost    int

	decoyOnce sync.Once
	decoyHash []byte
}

// NewAuthService hashes passwords with bcrypt at the given cost; zero
// selects bcrypt.DefaultCost.
func NewAuthService(backend *Backend, cost int) *AuthService {
	backend.withDefaults()

	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &AuthService{backend: backend, cost: cost}
}

func (s *AuthService) SignUp(ctx context.Context, name, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return nil, err
	}

	user := domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		PasswordHash: string(hash),
		Tickets:      []domain.Ticket{},
	}

	err = s.backend.Accounts.Apply(ctx, s.backend.Gateway, func(a *store.Accounts) error {
		return a.Add(user)
	})
	if err != nil {
		return nil, err
	}

	s.backend.Logger.Info("user signed up", "user_id", user.ID, "name", user.Name)

	return &user, nil
}

// Login reports ErrInvalidCredentials for an unknown name and for a wrong
// password alike. An unknown name still pays for one hash comparison.
func (s *AuthService) Login(_ context.Context, name, password string) (*domain.User, error) {
	user, found := s.backend.Accounts.UserByName(strings.TrimSpace(name))

	hash := s.decoy()
	if found {
		hash = []byte(user.PasswordHash)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !found {
		s.backend.Logger.Debug("login rejected", "name", name)
		return nil, domain.ErrInvalidCredentials
	}

	return &user, nil
}

func (s *AuthService) decoy() []byte {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.New().String()), s.cost)
	})

	return s.decoyHash
}
