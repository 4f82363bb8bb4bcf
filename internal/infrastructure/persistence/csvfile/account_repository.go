package csvfile

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

var accountHeader = []string{"username", "email", "phone", "password_hash", "created_at"}

// AccountRepository stores accounts in a CSV file with one row per account.
// The file is re-read on every lookup so accounts appended by other tools are visible.
type AccountRepository struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

// NewAccountRepository returns a CSV-backed account store at path.
func NewAccountRepository(path string, log logger.Logger) repository.AccountRepository {
	return &AccountRepository{
		path:   path,
		logger: log.WithComponent("csv-accounts"),
	}
}

func (r *AccountRepository) load() ([]models.Account, error) {
	rows, err := readAll(r.path)
	if err != nil {
		return nil, err
	}
	return parseAccounts(rows), nil
}

// parseAccounts maps rows by the header in rows[0]; blank rows are skipped.
func parseAccounts(rows [][]string) []models.Account {
	if len(rows) == 0 {
		return nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	cell := func(row []string, name string) string {
		if i, ok := index[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	accounts := make([]models.Account, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if models.IsEmptyRow(row) {
			continue
		}
		acc := models.Account{
			Username:     cell(row, "username"),
			Email:        cell(row, "email"),
			Phone:        cell(row, "phone"),
			PasswordHash: cell(row, "password_hash"),
		}
		if ts := cell(row, "created_at"); ts != "" {
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				acc.CreatedAt = t
			}
		}
		accounts = append(accounts, acc)
	}
	return accounts
}

func (r *AccountRepository) FindByIdentifier(ctx context.Context, loginType constants.LoginType, value string) (*models.Account, error) {
	if value == "" {
		return nil, errors.ErrAccountNotFound
	}
	accounts, err := r.load()
	if err != nil {
		r.logger.Error(ctx, "Failed to load accounts", err, logger.Fields{"path": r.path})
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Identifier(loginType) == value {
			return &accounts[i], nil
		}
	}
	return nil, errors.ErrAccountNotFound
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := readAll(r.path)
	if err != nil {
		return err
	}
	accounts := parseAccounts(rows)
	for i := range accounts {
		if accounts[i].Collides(account) {
			return errors.ErrAccountExists
		}
	}

	row := []string{
		account.Username,
		account.Email,
		account.Phone,
		account.PasswordHash,
		account.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	var header []string
	if len(rows) == 0 {
		header = accountHeader
	}
	if err := appendRows(r.path, header, row); err != nil {
		r.logger.Error(ctx, "Failed to append account", err, logger.Fields{"path": r.path})
		return err
	}
	r.logger.Info(ctx, "Account stored", logger.Fields{"username": account.Username})
	return nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	accounts, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(accounts)), nil
}

// Ping succeeds when the file is readable or not yet created.
func (r *AccountRepository) Ping(ctx context.Context) error {
	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Storage("open accounts", err)
	}
	return f.Close()
}
