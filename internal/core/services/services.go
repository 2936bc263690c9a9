package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

var logger = logrus.WithField("component", "services")

// maxStoreRetries bounds how often a whole operation is re-run after a
// transient store error.
const maxStoreRetries = 3

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// retryTransient re-runs op while it fails with domain.ErrTransient. Any other
// error is returned as is on the first occurrence.
func retryTransient(ctx context.Context, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 50 * time.Millisecond
	eb.MaxElapsedTime = 2 * time.Second

	b := backoff.WithContext(backoff.WithMaxRetries(eb, maxStoreRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, domain.ErrTransient) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}

// inTx runs fn in one transaction, re-running the whole transaction on
// transient store errors.
func inTx(ctx context.Context, store ports.Store, fn func(ctx context.Context, tx ports.Tx) error) error {
	return retryTransient(ctx, func() error {
		return store.InTx(ctx, fn)
	})
}

func requireAdmin(id domain.Identity) error {
	if !id.IsAuthenticated() || !id.IsAdmin {
		return domain.ErrNotAdmin
	}
	return nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func validSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}
