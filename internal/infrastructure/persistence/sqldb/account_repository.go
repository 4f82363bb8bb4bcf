package sqldb

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// AccountRepoImpl implements AccountRepository on top of gorm.
type AccountRepoImpl struct {
	db     *gorm.DB
	mu     sync.Mutex
	logger logger.Logger
}

// NewAccountRepository creates a new account repository instance.
func NewAccountRepository(db *gorm.DB, log logger.Logger) repository.AccountRepository {
	return &AccountRepoImpl{
		db:     db,
		logger: log.WithComponent("sql-accounts"),
	}
}

func identifierColumn(loginType constants.LoginType) string {
	switch loginType {
	case constants.LoginTypeEmail:
		return "email"
	case constants.LoginTypePhone:
		return "phone"
	default:
		return "username"
	}
}

func (r *AccountRepoImpl) FindByIdentifier(ctx context.Context, loginType constants.LoginType, value string) (*models.Account, error) {
	if value == "" {
		return nil, errors.ErrAccountNotFound
	}
	var account models.Account
	err := r.db.WithContext(ctx).
		Where(identifierColumn(loginType)+" = ?", value).
		Order("created_at ASC").
		First(&account).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error(ctx, "Failed to find account", err, logger.Fields{"login_type": loginType})
		return nil, errors.Storage("find account", err)
	}
	return &account, nil
}

// Create checks for colliding identifiers and inserts in one transaction.
// The process-wide lock covers SQLite, which has no row-level locking; the primary key
// on username is the last line for PostgreSQL deployments with several replicas.
func (r *AccountRepoImpl) Create(ctx context.Context, account *models.Account) error {
	start := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Account{}).Where("username = ?", account.Username)
		if account.Email != "" {
			q = q.Or("email = ?", account.Email)
		}
		if account.Phone != "" {
			q = q.Or("phone = ?", account.Phone)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errors.ErrAccountExists
		}
		return tx.Create(account).Error
	})
	if err != nil {
		if errors.Is(err, errors.ErrAccountExists) || stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAccountExists
		}
		r.logger.Error(ctx, "Failed to create account", err, logger.Fields{"username": account.Username})
		return errors.Storage("create account", err)
	}

	r.logger.Debug(ctx, "Account created", logger.Fields{
		"username":   account.Username,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (r *AccountRepoImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Count(&n).Error; err != nil {
		return 0, errors.Storage("count accounts", err)
	}
	return n, nil
}

func (r *AccountRepoImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Storage("database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Storage("ping database", err)
	}
	return nil
}
