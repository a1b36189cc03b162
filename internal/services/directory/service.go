// Package directory resolves human-facing identifiers (account number,
// email, username) to accounts. Callers never address the account store by
// anything other than the opaque account ID it hands back.
package directory

import (
	"context"
	"errors"
	"log"
	"strings"

	"kora/internal/models"
	"kora/internal/repositories"
)

// Service resolves account references.
type Service interface {
	Resolve(ctx context.Context, ref string) (*models.Account, error)
	ResolveEmail(ctx context.Context, email string) (*models.Account, error)
}

// AccountCache is the slice of the cache layer the directory uses. Accounts
// are cached under their ID so the coordinator's post-commit invalidation
// evicts the same entry this package reads; the email entry only maps the
// address to that ID and never goes stale.
type AccountCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	GenerateKey(entityType, keyType string, value interface{}) string
	CacheAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, accountID uint) (*models.Account, error)
}

type service struct {
	users repositories.UserRepository
	store repositories.Store
	cache AccountCache
}

// NewService creates an account directory. accountCache may be nil; lookups
// then always go to the database.
func NewService(users repositories.UserRepository, store repositories.Store, accountCache AccountCache) Service {
	if users == nil {
		panic("user repository is required")
	}
	if store == nil {
		panic("store is required")
	}
	return &service{
		users: users,
		store: store,
		cache: accountCache,
	}
}

// Resolve tries, in order: email (when the ref contains '@'), account
// number, then username.
func (s *service) Resolve(ctx context.Context, ref string) (*models.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, repositories.ErrAccountNotFound
	}

	if strings.Contains(ref, "@") {
		return s.ResolveEmail(ctx, ref)
	}

	account, err := s.store.GetAccountByNumber(ctx, ref)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repositories.ErrAccountNotFound) {
		return nil, err
	}

	user, err := s.users.GetByUserName(ctx, ref)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, err
	}
	return s.store.GetAccountByUserID(ctx, user.ID)
}

func (s *service) ResolveEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.cache != nil {
		var accountID uint
		if found, err := s.cache.Get(ctx, s.cache.GenerateKey("account", "email", email), &accountID); err == nil && found {
			if account, err := s.cache.GetAccount(ctx, accountID); err == nil {
				return account, nil
			}
			// The ID entry was evicted after a balance change; re-read the row.
			if account, err := s.store.GetAccountByID(ctx, accountID); err == nil {
				s.cacheAccount(ctx, "", account)
				return account, nil
			}
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, err
	}
	account, err := s.store.GetAccountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.cacheAccount(ctx, email, account)
	return account, nil
}

func (s *service) cacheAccount(ctx context.Context, email string, account *models.Account) {
	if s.cache == nil {
		return
	}
	if email != "" {
		if err := s.cache.Set(ctx, s.cache.GenerateKey("account", "email", email), account.ID); err != nil {
			log.Printf("failed to cache account id for %s: %v", email, err)
		}
	}
	if err := s.cache.CacheAccount(ctx, account); err != nil {
		log.Printf("failed to cache account %d: %v", account.ID, err)
	}
}
