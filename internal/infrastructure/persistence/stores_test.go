package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

func TestNewStoresBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name         string
		cfg          config.Config
		wantMigrator bool
	}{
		{
			name: "memory",
			cfg:  config.Config{Storage: config.StorageConfig{Backend: "memory"}},
		},
		{
			name: "csv",
			cfg: config.Config{Storage: config.StorageConfig{
				Backend:         "csv",
				AccountsPath:    filepath.Join(dir, "users.csv"),
				PredictionsPath: filepath.Join(dir, "predictions.csv"),
			}},
			wantMigrator: true,
		},
		{
			name: "sql",
			cfg: config.Config{
				Storage:  config.StorageConfig{Backend: "sql"},
				Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "oralrisk.db")},
			},
			wantMigrator: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores, err := NewStores(ctx, &tt.cfg, logger.NewNoopLogger())
			require.NoError(t, err)
			defer stores.Close()

			assert.NotNil(t, stores.Accounts)
			assert.NotNil(t, stores.Sessions)
			assert.Equal(t, tt.wantMigrator, stores.Migrator != nil)

			require.NoError(t, stores.Predictions.Append(ctx, models.PredictionRecord{models.FieldPredictedLabel: "low"}))
			list, err := stores.Predictions.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestNewStoresRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: "memory"},
		Session: config.SessionConfig{Backend: "redis", KeyPrefix: "t:"},
		Limits:  config.LimitsConfig{Enabled: true, Requests: 1, Window: 60},
		Redis:   config.RedisConfig{Address: mr.Addr()},
	}
	stores, err := NewStores(context.Background(), cfg, logger.NewNoopLogger())
	require.NoError(t, err)
	defer stores.Close()

	sess, err := stores.Sessions.Create(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, mr.Exists("t:"+sess.ID))

	require.NotNil(t, stores.Limiter)
	ok, _, err := stores.Limiter.Allow(context.Background(), "ip:127.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _, err = stores.Limiter.Allow(context.Background(), "ip:127.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("oralrisk:ratelimit:ip:127.0.0.1"))
}

func TestNewStoresRejectsUnknownBackend(t *testing.T) {
	_, err := NewStores(context.Background(), &config.Config{
		Storage: config.StorageConfig{Backend: "mongo"},
	}, logger.NewNoopLogger())
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
