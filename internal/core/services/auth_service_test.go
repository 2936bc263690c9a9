package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

func TestResolveRequestContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key, err := f.identity.IssueKeyIfAbsent(ctx, "p1")
	require.NoError(t, err)

	id := f.auth.ResolveRequestContext(ctx, key)
	require.True(t, id.IsAuthenticated())
	assert.Equal(t, "p1", id.User.ID)
	assert.False(t, id.IsAdmin)

	adminKey, err := f.identity.IssueKeyIfAbsent(ctx, "admin")
	require.NoError(t, err)
	id = f.auth.ResolveRequestContext(ctx, "  "+adminKey+" ")
	assert.True(t, id.IsAdmin)

	for _, credential := range []string{"", "   ", "not-a-key"} {
		assert.Equal(t, domain.Anonymous(), f.auth.ResolveRequestContext(ctx, credential))
	}
}

func TestResolveRequestContextAdminMatchIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key, err := f.identity.IssueKeyIfAbsent(ctx, "p2")
	require.NoError(t, err)

	auth := NewAuthService(f.store, []string{" P2@EXAMPLE.com "})
	assert.True(t, auth.ResolveRequestContext(ctx, key).IsAdmin)

	auth = NewAuthService(f.store, nil)
	id := auth.ResolveRequestContext(ctx, key)
	assert.True(t, id.IsAuthenticated())
	assert.False(t, id.IsAdmin)
}

type failingStore struct {
	err error
}

func (s failingStore) InTx(context.Context, func(context.Context, ports.Tx) error) error {
	return s.err
}

func TestResolveRequestContextDegradesOnStoreFailure(t *testing.T) {
	auth := NewAuthService(failingStore{err: errors.New("syntax error")}, []string{adminEmail})
	assert.Equal(t, domain.Anonymous(), auth.ResolveRequestContext(context.Background(), "anything"))

	id, err := auth.Resolve(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Equal(t, domain.Anonymous(), id)
}

func TestResolveReportsTransientStoreErrors(t *testing.T) {
	down := failingStore{err: fmt.Errorf("%w: connection refused", domain.ErrTransient)}
	auth := NewAuthService(down, []string{adminEmail})

	_, err := auth.Resolve(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, domain.Anonymous(), auth.ResolveRequestContext(context.Background(), "anything"))

	id, err := auth.Resolve(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, domain.Anonymous(), id)
}
