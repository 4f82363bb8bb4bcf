package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	require.NoError(t, repo.Create(ctx, &models.Account{Username: "alice", Email: "a@x.io", PasswordHash: "h"}))
	require.NoError(t, repo.Create(ctx, &models.Account{Username: "bob", PasswordHash: "h"}))

	err := repo.Create(ctx, &models.Account{Username: "carol", Email: "a@x.io", PasswordHash: "h"})
	assert.True(t, errors.Is(err, errors.ErrAccountExists))

	got, err := repo.FindByIdentifier(ctx, constants.LoginTypeEmail, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got.Username = "mutated"
	again, err := repo.FindByIdentifier(ctx, constants.LoginTypeUsername, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)

	_, err = repo.FindByIdentifier(ctx, constants.LoginTypeEmail, "")
	assert.True(t, errors.Is(err, errors.ErrAccountNotFound))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPredictionRepositoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.Append(ctx, models.PredictionRecord{models.FieldPredictedLabel: "low", "extra": "x"}))
	require.NoError(t, repo.Append(ctx, models.PredictionRecord{models.FieldPredictedLabel: "high"}))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "high", list[0].Label())
	assert.Equal(t, "low", list[1].Label())
	assert.Len(t, list[1], len(models.CurrentSchema.Fields))
	_, extra := list[1]["extra"]
	assert.False(t, extra)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Hour)

	sess, err := store.Create(ctx, "alice")
	require.NoError(t, err)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrSessionNotFound))

	short := NewSessionStore(10 * time.Millisecond)
	sess, err = short.Create(ctx, "bob")
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)
	_, err = short.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrSessionNotFound))
}
