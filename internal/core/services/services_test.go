package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

// flakyStore fails the first n transactions with a transient error.
type flakyStore struct {
	ports.Store
	n     int
	calls int
}

func (s *flakyStore) InTx(ctx context.Context, fn func(context.Context, ports.Tx) error) error {
	s.calls++
	if s.calls <= s.n {
		return fmt.Errorf("%w: deadlock detected", domain.ErrTransient)
	}
	return s.Store.InTx(ctx, fn)
}

func TestCastVoteRetriesTransientErrors(t *testing.T) {
	f := newFixture(t)
	f.createPoll(t, "q1")
	p1 := f.login(t, "p1")

	flaky := &flakyStore{Store: f.store, n: 2}
	polls := NewPollService(flaky)

	outcome, err := polls.CastVote(context.Background(), p1, "q1", "yee")
	require.NoError(t, err)
	assert.Equal(t, domain.VoteRecorded, outcome)
	assert.Equal(t, 3, flaky.calls)
}

func TestReadsRetryTransientErrors(t *testing.T) {
	f := newFixture(t)
	f.createPoll(t, "q1")
	p1 := f.login(t, "p1")
	ctx := context.Background()

	flaky := &flakyStore{Store: f.store, n: 2}
	poll, err := NewPollService(flaky).GetPoll(ctx, p1, "q1")
	require.NoError(t, err)
	assert.Equal(t, "q1", poll.Slug)
	assert.Equal(t, 3, flaky.calls)

	flaky = &flakyStore{Store: f.store, n: 2}
	polls, err := NewPollService(flaky).ListPolls(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, polls, 1)
	assert.Equal(t, 3, flaky.calls)

	flaky = &flakyStore{Store: f.store, n: 2}
	members, err := NewGroupService(flaky).GroupMembers(ctx, f.admin, "g1")
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryGivesUpAfterBoundedAttempts(t *testing.T) {
	f := newFixture(t)
	f.createPoll(t, "q1")
	p1 := f.login(t, "p1")

	flaky := &flakyStore{Store: f.store, n: 100}
	polls := NewPollService(flaky)

	_, err := polls.CastVote(context.Background(), p1, "q1", "yee")
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, maxStoreRetries+1, flaky.calls)

	poll, err := f.polls.GetPoll(context.Background(), p1, "q1")
	require.NoError(t, err)
	assert.Zero(t, poll.VotesTotal())
}

func TestRetryDoesNotRepeatPermanentErrors(t *testing.T) {
	calls := 0
	err := retryTransient(context.Background(), func() error {
		calls++
		return domain.ErrPollNotFound
	})
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retryTransient(ctx, func() error {
		calls++
		return domain.ErrTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, requireAdmin(domain.Anonymous()), domain.ErrNotAdmin)
	assert.ErrorIs(t, requireAdmin(domain.Identity{User: &domain.Person{ID: "a"}}), domain.ErrNotAdmin)
	assert.ErrorIs(t, requireAdmin(domain.Identity{IsAdmin: true}), domain.ErrNotAdmin)
	assert.NoError(t, requireAdmin(domain.Identity{User: &domain.Person{ID: "a"}, IsAdmin: true}))
}
