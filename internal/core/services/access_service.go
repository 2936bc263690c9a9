package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type accessService struct {
	identity ports.IdentityService
	notifier ports.KeyNotifier
}

func NewAccessService(identity ports.IdentityService, notifier ports.KeyNotifier) ports.AccessService {
	return &accessService{
		identity: identity,
		notifier: notifier,
	}
}

// RequestAccess issues a key to the owner of address if they lack one and
// mails it to them. The key is committed before the notifier runs; a failed
// delivery leaves it issued.
func (s *accessService) RequestAccess(ctx context.Context, address string) error {
	address = normalizeAddress(address)
	person, err := s.identity.ResolveByEmail(ctx, address)
	if err != nil {
		return err
	}
	if person == nil {
		return domain.ErrUnknownEmail
	}

	key, err := s.identity.IssueKeyIfAbsent(ctx, person.ID)
	if err != nil {
		return fmt.Errorf("failed to issue secret key: %w", err)
	}

	if err := s.notifier.SendSecretKey(ctx, address, key); err != nil {
		logger.WithError(err).WithField("person", person.ID).Error("failed to send secret key")
		return fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
	}
	return nil
}
