package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type pollService struct {
	store ports.Store
}

func NewPollService(store ports.Store) ports.PollService {
	return &pollService{
		store: store,
	}
}

// CreatePoll creates the poll and snapshots the group's current membership
// into its roster in one transaction. The roster never changes afterwards.
func (s *pollService) CreatePoll(ctx context.Context, id domain.Identity, input ports.CreatePollInput) (*domain.Poll, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrInvalidName
	}
	if !validSlug(input.Slug) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSlug, input.Slug)
	}

	var poll *domain.Poll
	err := retryTransient(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
			group, err := tx.Groups().GetBySlugForShare(ctx, input.GroupSlug)
			if err != nil {
				return fmt.Errorf("failed to get group: %w", err)
			}
			if group == nil {
				return domain.ErrGroupNotFound
			}

			existing, err := tx.Polls().GetBySlug(ctx, input.Slug)
			if err != nil {
				return fmt.Errorf("failed to get poll: %w", err)
			}
			if existing != nil {
				return domain.ErrSlugTaken
			}

			p := &domain.Poll{
				ID:        uuid.New(),
				Slug:      input.Slug,
				Name:      input.Name,
				IsOpen:    input.Open,
				IsVisible: input.Visible,
				CreatedAt: time.Now(),
			}
			if err := tx.Polls().Create(ctx, p); err != nil {
				return err
			}

			memberIDs, err := tx.Groups().MemberIDs(ctx, group.ID)
			if err != nil {
				return fmt.Errorf("failed to get group members: %w", err)
			}
			for _, personID := range memberIDs {
				member := &domain.PollMember{
					ID:       uuid.New(),
					PollID:   p.ID,
					PersonID: personID,
				}
				if err := tx.Polls().AddMember(ctx, member); err != nil {
					return fmt.Errorf("failed to add poll member: %w", err)
				}
			}

			p.RosterSize = len(memberIDs)
			poll = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"poll":   poll.Slug,
		"group":  input.GroupSlug,
		"roster": poll.RosterSize,
	}).Info("poll created")
	return poll, nil
}

// GetPoll hides invisible polls from non-admins.
func (s *pollService) GetPoll(ctx context.Context, id domain.Identity, slug string) (*domain.Poll, error) {
	var poll *domain.Poll
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		p, err := visiblePoll(ctx, tx, id, slug)
		if err != nil {
			return err
		}
		if err := withRosterSize(ctx, tx, p); err != nil {
			return err
		}
		poll = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *pollService) ListPolls(ctx context.Context, id domain.Identity) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		polls = nil
		all, err := tx.Polls().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list polls: %w", err)
		}
		for _, p := range all {
			if !p.IsVisible && !id.IsAdmin {
				continue
			}
			if err := withRosterSize(ctx, tx, p); err != nil {
				return err
			}
			polls = append(polls, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func (s *pollService) SetOpen(ctx context.Context, id domain.Identity, slug string, open bool) (*domain.Poll, error) {
	return s.toggle(ctx, id, slug, func(ctx context.Context, tx ports.Tx, p *domain.Poll) error {
		if err := tx.Polls().SetOpen(ctx, p.ID, open); err != nil {
			return fmt.Errorf("failed to set poll open: %w", err)
		}
		p.IsOpen = open
		return nil
	})
}

func (s *pollService) SetVisible(ctx context.Context, id domain.Identity, slug string, visible bool) (*domain.Poll, error) {
	return s.toggle(ctx, id, slug, func(ctx context.Context, tx ports.Tx, p *domain.Poll) error {
		if err := tx.Polls().SetVisible(ctx, p.ID, visible); err != nil {
			return fmt.Errorf("failed to set poll visible: %w", err)
		}
		p.IsVisible = visible
		return nil
	})
}

func (s *pollService) toggle(ctx context.Context, id domain.Identity, slug string, apply func(context.Context, ports.Tx, *domain.Poll) error) (*domain.Poll, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}

	var poll *domain.Poll
	err := retryTransient(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
			p, err := tx.Polls().GetBySlugForUpdate(ctx, slug)
			if err != nil {
				return fmt.Errorf("failed to get poll: %w", err)
			}
			if p == nil {
				return domain.ErrPollNotFound
			}
			if err := apply(ctx, tx, p); err != nil {
				return err
			}
			if err := withRosterSize(ctx, tx, p); err != nil {
				return err
			}
			poll = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"poll":    poll.Slug,
		"open":    poll.IsOpen,
		"visible": poll.IsVisible,
	}).Info("poll updated")
	return poll, nil
}

// FindCurrentMember returns the caller's roster row, or nil if the caller is
// anonymous or not on the roster.
func (s *pollService) FindCurrentMember(ctx context.Context, id domain.Identity, slug string) (*domain.PollMember, error) {
	if !id.IsAuthenticated() {
		return nil, nil
	}

	var member *domain.PollMember
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		poll, err := tx.Polls().GetBySlug(ctx, slug)
		if err != nil {
			return fmt.Errorf("failed to get poll: %w", err)
		}
		if poll == nil {
			return domain.ErrPollNotFound
		}
		m, err := tx.Polls().GetMember(ctx, poll.ID, id.User.ID)
		if err != nil {
			return fmt.Errorf("failed to get poll member: %w", err)
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// CastVote records one vote for the caller. The member row is write-locked
// before its voted flag is read, so concurrent attempts by the same person
// serialize: one records, the rest observe VoteAlreadyCast.
func (s *pollService) CastVote(ctx context.Context, id domain.Identity, slug string, choice string) (domain.VoteOutcome, error) {
	if !id.IsAuthenticated() {
		return 0, domain.ErrNotPollMember
	}

	var outcome domain.VoteOutcome
	err := retryTransient(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
			poll, err := tx.Polls().GetBySlug(ctx, slug)
			if err != nil {
				return fmt.Errorf("failed to get poll: %w", err)
			}
			if poll == nil {
				return domain.ErrPollNotFound
			}

			member, err := tx.Polls().GetMemberForUpdate(ctx, poll.ID, id.User.ID)
			if err != nil {
				return fmt.Errorf("failed to get poll member: %w", err)
			}
			if member == nil {
				return domain.ErrNotPollMember
			}
			if member.Voted {
				outcome = domain.VoteAlreadyCast
				return nil
			}

			c, ok := domain.ParseChoice(choice)
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrInvalidChoice, choice)
			}
			if !poll.IsOpen {
				return domain.ErrPollClosed
			}

			if err := tx.Polls().MarkVoted(ctx, member.ID); err != nil {
				return fmt.Errorf("failed to mark member voted: %w", err)
			}
			if err := tx.Polls().IncrementVote(ctx, poll.ID, c); err != nil {
				if errors.Is(err, domain.ErrPollClosed) {
					return err
				}
				return fmt.Errorf("failed to count vote: %w", err)
			}
			outcome = domain.VoteRecorded
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	logger.WithFields(logrus.Fields{
		"poll":    slug,
		"person":  id.User.ID,
		"outcome": outcome.String(),
	}).Info("vote cast")
	return outcome, nil
}

// ListUnvoted is available to admins and to the poll's own roster.
func (s *pollService) ListUnvoted(ctx context.Context, id domain.Identity, slug string) ([]*domain.Person, error) {
	if !id.IsAuthenticated() {
		return nil, domain.ErrNotPollMember
	}

	var people []*domain.Person
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		poll, err := visiblePoll(ctx, tx, id, slug)
		if err != nil {
			return err
		}
		if !id.IsAdmin {
			m, err := tx.Polls().GetMember(ctx, poll.ID, id.User.ID)
			if err != nil {
				return fmt.Errorf("failed to get poll member: %w", err)
			}
			if m == nil {
				return domain.ErrNotPollMember
			}
		}

		p, err := tx.Polls().ListUnvoted(ctx, poll.ID)
		if err != nil {
			return fmt.Errorf("failed to list unvoted members: %w", err)
		}
		people = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

func visiblePoll(ctx context.Context, tx ports.Tx, id domain.Identity, slug string) (*domain.Poll, error) {
	poll, err := tx.Polls().GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	if poll == nil || (!poll.IsVisible && !id.IsAdmin) {
		return nil, domain.ErrPollNotFound
	}
	return poll, nil
}

func withRosterSize(ctx context.Context, tx ports.Tx, poll *domain.Poll) error {
	n, err := tx.Polls().CountMembers(ctx, poll.ID)
	if err != nil {
		return fmt.Errorf("failed to count poll members: %w", err)
	}
	poll.RosterSize = n
	return nil
}
