package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
	"github.com/99minutos/users-api/internal/pkg/metrics"
)

const (
	// PageSize is the fixed number of accounts per listing page.
	PageSize = 10

	defaultMailTimeout = 10 * time.Second

	// maxPage keeps (page-1)*PageSize within int range.
	maxPage = math.MaxInt / PageSize
)

// AccountOptions tunes AccountService behaviour.
type AccountOptions struct {
	// MailTimeout bounds each email dispatch. Defaults to 10s.
	MailTimeout time.Duration
	// CaseInsensitiveEmail lower-cases emails before they reach the store.
	CaseInsensitiveEmail bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type AccountService struct {
	repo     ports.AccountRepository
	orders   ports.OrderCounter
	notifier ports.Notifier
	opts     AccountOptions
	log      zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	orders ports.OrderCounter,
	notifier ports.Notifier,
	opts AccountOptions,
	log zerolog.Logger,
) *AccountService {
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = defaultMailTimeout
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{repo: repo, orders: orders, notifier: notifier, opts: opts, log: log}
}

// CreateUser persists a new account, then sends the welcome email and the
// admin notification in that order. A welcome failure is returned as an
// *domain.EmailDispatchError together with the committed account; an admin
// notification failure is only logged.
func (s *AccountService) CreateUser(ctx context.Context, in ports.CreateAccountInput, actor *domain.Account) (*domain.Account, error) {
	if !domain.CanCreate(actor) {
		s.log.Info().Int64("actor_id", actorID(actor)).Msg("account creation forbidden")
		return nil, domain.ErrForbidden
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create_account", Err: err}
	}

	role := domain.RoleUser
	if in.Role != nil {
		role = *in.Role
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Email:        s.normalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrDuplicateEmail
		}
		s.log.Error().Err(err).Int64("actor_id", actor.ID).Msg("failed to create account")
		return nil, &domain.PersistenceError{Op: "create_account", Err: err}
	}

	metrics.AccountsCreatedTotal.WithLabelValues(created.Role.Lower()).Inc()

	if err := s.dispatch(ctx, domain.PhaseWelcomeEmail, created, s.notifier.SendWelcome); err != nil {
		s.log.Warn().Err(err).
			Int64("actor_id", actor.ID).
			Int64("target_id", created.ID).
			Msg("welcome email failed")
		return created, &domain.EmailDispatchError{Phase: domain.PhaseWelcomeEmail, AccountID: created.ID, Err: err}
	}

	if err := s.dispatch(ctx, domain.PhaseAdminNotification, created, s.notifier.NotifyAdmin); err != nil {
		s.log.Warn().Err(err).
			Int64("actor_id", actor.ID).
			Int64("target_id", created.ID).
			Msg("admin notification email failed")
	}

	s.log.Info().Int64("actor_id", actor.ID).Int64("user_id", created.ID).Msg("account created")
	return created, nil
}

// UpdateUser applies a partial update. The target is looked up before the
// permission check, so unknown ids always yield domain.ErrAccountNotFound.
func (s *AccountService) UpdateUser(ctx context.Context, id int64, in ports.UpdateAccountInput, actor *domain.Account) (*domain.Account, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		s.log.Error().Err(err).Int64("actor_id", actorID(actor)).Int64("target_id", id).Msg("failed to load account")
		return nil, &domain.PersistenceError{Op: "update_account", Err: err}
	}

	if !domain.CanEdit(actor, target) {
		s.log.Info().Int64("actor_id", actorID(actor)).Int64("target_id", id).Msg("account update forbidden")
		return nil, domain.ErrForbidden
	}

	changes := domain.AccountChanges{Name: in.Name, Role: in.Role, Active: in.Active}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		changes.Name = &name
	}
	if in.Email != nil {
		email := s.normalizeEmail(*in.Email)
		changes.Email = &email
	}
	if changes.IsEmpty() {
		return target, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateKey):
			return nil, domain.ErrDuplicateEmail
		case errors.Is(err, domain.ErrAccountNotFound):
			return nil, domain.ErrAccountNotFound
		}
		s.log.Error().Err(err).Int64("actor_id", actor.ID).Int64("target_id", id).Msg("failed to update account")
		return nil, &domain.PersistenceError{Op: "update_account", Err: err}
	}

	s.log.Info().Int64("actor_id", actor.ID).Int64("user_id", updated.ID).Msg("account updated")
	return updated, nil
}

// ListUsers returns one page of active accounts, each annotated with its
// order count and whether actor may edit it.
func (s *AccountService) ListUsers(ctx context.Context, in ports.ListAccountsInput, actor *domain.Account) (*ports.ListAccountsResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	accounts, total, err := s.repo.List(ctx, ports.ListAccountsFilter{
		Search: strings.TrimSpace(in.Search),
		SortBy: NormalizeSortKey(in.SortBy),
		Page:   page,
		Limit:  PageSize,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("actor_id", actorID(actor)).Msg("failed to list accounts")
		return nil, &domain.PersistenceError{Op: "list_accounts", Err: err}
	}

	counts := map[int64]int64{}
	if s.orders != nil && len(accounts) > 0 {
		ids := make([]int64, len(accounts))
		for i, a := range accounts {
			ids[i] = a.ID
		}
		counts, err = s.orders.CountOrders(ctx, ids)
		if err != nil {
			s.log.Error().Err(err).Int64("actor_id", actorID(actor)).Msg("failed to count orders")
			return nil, &domain.PersistenceError{Op: "list_accounts", Err: err}
		}
	}

	items := make([]ports.AccountSummary, len(accounts))
	for i, a := range accounts {
		items[i] = ports.AccountSummary{
			ID:          a.ID,
			Email:       a.Email,
			Name:        a.Name,
			Role:        a.Role,
			CreatedAt:   a.CreatedAt,
			OrdersCount: counts[a.ID],
			CanEdit:     domain.CanEdit(actor, a),
		}
	}

	return &ports.ListAccountsResult{
		Items:      items,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: int((total + PageSize - 1) / PageSize),
	}, nil
}

// GetUser fetches a single account by id.
func (s *AccountService) GetUser(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		s.log.Error().Err(err).Int64("target_id", id).Msg("failed to load account")
		return nil, &domain.PersistenceError{Op: "get_account", Err: err}
	}
	return account, nil
}

// NormalizeSortKey maps a user-supplied sort key onto a supported one.
// Unknown keys fall back to creation time.
func NormalizeSortKey(key string) string {
	switch strings.TrimSpace(key) {
	case ports.SortByName:
		return ports.SortByName
	case ports.SortByEmail:
		return ports.SortByEmail
	default:
		return ports.SortByCreatedAt
	}
}

func (s *AccountService) dispatch(
	ctx context.Context,
	phase string,
	account *domain.Account,
	send func(context.Context, *domain.Account) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.MailTimeout)
	defer cancel()

	start := time.Now()
	err := send(ctx, account)
	metrics.EmailDispatchDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.EmailDispatchTotal.WithLabelValues(phase, result).Inc()
	return err
}

func (s *AccountService) normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if s.opts.CaseInsensitiveEmail {
		return strings.ToLower(email)
	}
	return email
}

func actorID(actor *domain.Account) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
