package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/cache"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type busyLocker struct{ err error }

func (b busyLocker) Acquire(context.Context, string) (func(), error) { return nil, b.err }

func TestLocalSessionLockerSerialises(t *testing.T) {
	locker := NewLocalSessionLocker()
	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locker.Acquire(context.Background(), "other")
	require.NoError(t, err)
	other()

	release()
	again, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	again()
}

func TestChainedSessionLockerReleasesOnFailure(t *testing.T) {
	local := NewLocalSessionLocker()
	chain := NewChainedSessionLocker(local, nil, busyLocker{err: cache.ErrLockHeld})

	_, err := chain.Acquire(context.Background(), "k")
	require.Error(t, err)

	release, err := local.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()
}

func TestAcquireSessionMapsContention(t *testing.T) {
	key := models.SessionKey{ScopeID: "test-1", Date: "2024-03-01"}
	_, err := acquireSession(context.Background(), busyLocker{err: cache.ErrLockHeld}, nil, "tenant-1", key)
	assert.True(t, errors.Is(err, appErrors.ErrLocked))

	_, err = acquireSession(context.Background(), busyLocker{err: errors.New("redis down")}, nil, "tenant-1", key)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	release, err := acquireSession(context.Background(), nil, nil, "tenant-1", key)
	require.NoError(t, err)
	release()
}
