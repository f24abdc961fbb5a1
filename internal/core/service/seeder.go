package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

const (
	seedAccountsPerRole = 3
	seedPassword        = "password123"
)

// Seeder creates the demo accounts used in development environments.
type Seeder struct {
	repo ports.AccountRepository
	log  zerolog.Logger
}

func NewSeeder(repo ports.AccountRepository, log zerolog.Logger) *Seeder {
	return &Seeder{repo: repo, log: log}
}

// Seed creates three active accounts per role, e.g. manager2@example.com.
// Emails that already exist are skipped, so Seed is safe to rerun. It
// returns the number of accounts created.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("seed: hash password: %w", err)
	}

	created := 0
	for _, role := range domain.Roles {
		for i := 1; i <= seedAccountsPerRole; i++ {
			email := fmt.Sprintf("%s%d@example.com", role.Lower(), i)

			_, err := s.repo.FindByEmail(ctx, email)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrAccountNotFound) {
				return created, fmt.Errorf("seed: lookup %s: %w", email, err)
			}

			now := time.Now().UTC()
			_, err = s.repo.Create(ctx, &domain.Account{
				Email:        email,
				Name:         fmt.Sprintf("Test %s User%d", role, i),
				PasswordHash: string(hash),
				Role:         role,
				Active:       true,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if errors.Is(err, domain.ErrDuplicateKey) {
				continue
			}
			if err != nil {
				return created, fmt.Errorf("seed: create %s: %w", email, err)
			}
			created++
		}
	}

	s.log.Info().Int("created", created).Msg("demo accounts seeded")
	return created, nil
}
