package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type PollRepository interface {
	// Create returns domain.ErrSlugTaken if the slug is in use.
	Create(ctx context.Context, poll *domain.Poll) error
	GetBySlug(ctx context.Context, slug string) (*domain.Poll, error)
	GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Poll, error)
	List(ctx context.Context) ([]*domain.Poll, error)
	SetOpen(ctx context.Context, pollID uuid.UUID, open bool) error
	SetVisible(ctx context.Context, pollID uuid.UUID, visible bool) error
	// IncrementVote counts one vote only while the poll is open; otherwise it
	// returns domain.ErrPollClosed.
	IncrementVote(ctx context.Context, pollID uuid.UUID, choice domain.Choice) error

	AddMember(ctx context.Context, member *domain.PollMember) error
	GetMember(ctx context.Context, pollID uuid.UUID, personID string) (*domain.PollMember, error)
	// GetMemberForUpdate write-locks the member row until the transaction ends.
	GetMemberForUpdate(ctx context.Context, pollID uuid.UUID, personID string) (*domain.PollMember, error)
	MarkVoted(ctx context.Context, memberID uuid.UUID) error
	CountMembers(ctx context.Context, pollID uuid.UUID) (int, error)
	// ListUnvoted returns roster persons who have not voted, ordered by name.
	ListUnvoted(ctx context.Context, pollID uuid.UUID) ([]*domain.Person, error)
}

type CreatePollInput struct {
	Name      string
	Slug      string
	GroupSlug string
	Open      bool
	Visible   bool
}

type PollService interface {
	CreatePoll(ctx context.Context, id domain.Identity, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id domain.Identity, slug string) (*domain.Poll, error)
	ListPolls(ctx context.Context, id domain.Identity) ([]*domain.Poll, error)
	SetOpen(ctx context.Context, id domain.Identity, slug string, open bool) (*domain.Poll, error)
	SetVisible(ctx context.Context, id domain.Identity, slug string, visible bool) (*domain.Poll, error)
	FindCurrentMember(ctx context.Context, id domain.Identity, slug string) (*domain.PollMember, error)
	CastVote(ctx context.Context, id domain.Identity, slug string, choice string) (domain.VoteOutcome, error)
	ListUnvoted(ctx context.Context, id domain.Identity, slug string) ([]*domain.Person, error)
}
