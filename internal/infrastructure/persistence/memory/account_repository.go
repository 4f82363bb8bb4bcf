// Package memory provides in-process implementations of the storage interfaces.
// They are used in tests and for throwaway deployments; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
)

// AccountRepository keeps accounts in insertion order.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts []models.Account
}

// NewAccountRepository creates an empty in-memory account store.
func NewAccountRepository() repository.AccountRepository {
	return &AccountRepository{}
}

func (r *AccountRepository) FindByIdentifier(ctx context.Context, loginType constants.LoginType, value string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.accounts {
		if value != "" && r.accounts[i].Identifier(loginType) == value {
			acc := r.accounts[i]
			return &acc, nil
		}
	}
	return nil, errors.ErrAccountNotFound
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].Collides(account) {
			return errors.ErrAccountExists
		}
	}
	r.accounts = append(r.accounts, *account)
	return nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.accounts)), nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return nil
}
