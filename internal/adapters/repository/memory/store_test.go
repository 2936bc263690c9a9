package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

func TestInTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		_, err := tx.People().Upsert(ctx, "a", "A")
		return err
	}))

	boom := errors.New("boom")
	err := store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		if _, err := tx.People().Upsert(ctx, "a", "Renamed"); err != nil {
			return err
		}
		if err := tx.Emails().Upsert(ctx, "a@example.com", "a"); err != nil {
			return err
		}
		g, err := tx.Groups().Upsert(ctx, "g", "G")
		if err != nil {
			return err
		}
		if err := tx.Groups().AddMember(ctx, g.ID, "a"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.People().GetByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "A", p.Name)

		e, err := tx.Emails().GetByAddress(ctx, "a@example.com")
		require.NoError(t, err)
		assert.Nil(t, e)

		g, err := tx.Groups().GetBySlug(ctx, "g")
		require.NoError(t, err)
		assert.Nil(t, g)
		return nil
	}))
}

func TestInTxHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore().InTx(ctx, func(context.Context, ports.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRepositoryConstraints(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		for _, id := range []string{"a", "b"} {
			if _, err := tx.People().Upsert(ctx, id, id); err != nil {
				return err
			}
		}

		changed, err := tx.People().Upsert(ctx, "a", "a")
		require.NoError(t, err)
		assert.False(t, changed)

		require.NoError(t, tx.People().SetSecretKey(ctx, "a", "k1"))
		assert.ErrorIs(t, tx.People().SetSecretKey(ctx, "b", "k1"), domain.ErrConflict)
		assert.ErrorIs(t, tx.Emails().Upsert(ctx, "x@example.com", "ghost"), domain.ErrPersonNotFound)

		poll := &domain.Poll{Slug: "q"}
		require.NoError(t, tx.Polls().Create(ctx, poll))
		assert.ErrorIs(t, tx.Polls().Create(ctx, &domain.Poll{Slug: "q"}), domain.ErrSlugTaken)

		require.NoError(t, tx.Polls().AddMember(ctx, &domain.PollMember{PollID: poll.ID, PersonID: "a"}))
		assert.ErrorIs(t, tx.Polls().AddMember(ctx, &domain.PollMember{PollID: poll.ID, PersonID: "a"}), domain.ErrConflict)
		return nil
	})
	require.NoError(t, err)
}

func TestIncrementVoteRequiresOpenPoll(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		poll := &domain.Poll{Slug: "q", IsOpen: true}
		require.NoError(t, tx.Polls().Create(ctx, poll))
		require.NoError(t, tx.Polls().IncrementVote(ctx, poll.ID, domain.ChoiceYee))

		require.NoError(t, tx.Polls().SetOpen(ctx, poll.ID, false))
		assert.ErrorIs(t, tx.Polls().IncrementVote(ctx, poll.ID, domain.ChoiceNay), domain.ErrPollClosed)

		got, err := tx.Polls().GetBySlug(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, 1, got.VotesYee)
		assert.Zero(t, got.VotesNay)
		return nil
	})
	require.NoError(t, err)
}
