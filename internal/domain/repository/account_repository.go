package repository

import (
	"context"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/constants"
)

// AccountRepository defines the interface for interacting with account storage.
// Implementations serialize Create against concurrent creates so that two
// registrations of the same identifier cannot both succeed.
type AccountRepository interface {
	// FindByIdentifier returns the account whose loginType identifier equals value exactly.
	// It returns errors.ErrAccountNotFound when nothing matches.
	FindByIdentifier(ctx context.Context, loginType constants.LoginType, value string) (*models.Account, error)

	// Create appends a new account. It returns errors.ErrAccountExists when any
	// unique identifier collides with an existing account.
	Create(ctx context.Context, account *models.Account) error

	// Count returns the number of stored accounts.
	Count(ctx context.Context) (int64, error)

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
