package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type pollRepository struct {
	st *state
}

func (r pollRepository) Create(_ context.Context, poll *domain.Poll) error {
	if _, ok := r.st.polls[poll.Slug]; ok {
		return domain.ErrSlugTaken
	}
	r.st.polls[poll.Slug] = *poll
	return nil
}

func (r pollRepository) GetBySlug(_ context.Context, slug string) (*domain.Poll, error) {
	p, ok := r.st.polls[slug]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r pollRepository) GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Poll, error) {
	return r.GetBySlug(ctx, slug)
}

func (r pollRepository) List(_ context.Context) ([]*domain.Poll, error) {
	polls := make([]*domain.Poll, 0, len(r.st.polls))
	for _, p := range r.st.polls {
		polls = append(polls, &p)
	}
	slices.SortFunc(polls, func(a, b *domain.Poll) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return polls, nil
}

func (r pollRepository) update(pollID uuid.UUID, fn func(*domain.Poll)) error {
	for slug, p := range r.st.polls {
		if p.ID == pollID {
			fn(&p)
			r.st.polls[slug] = p
			return nil
		}
	}
	return domain.ErrPollNotFound
}

func (r pollRepository) pollByID(pollID uuid.UUID) (domain.Poll, bool) {
	for _, p := range r.st.polls {
		if p.ID == pollID {
			return p, true
		}
	}
	return domain.Poll{}, false
}

func (r pollRepository) SetOpen(_ context.Context, pollID uuid.UUID, open bool) error {
	return r.update(pollID, func(p *domain.Poll) { p.IsOpen = open })
}

func (r pollRepository) SetVisible(_ context.Context, pollID uuid.UUID, visible bool) error {
	return r.update(pollID, func(p *domain.Poll) { p.IsVisible = visible })
}

func (r pollRepository) IncrementVote(_ context.Context, pollID uuid.UUID, choice domain.Choice) error {
	if _, ok := domain.ParseChoice(string(choice)); !ok {
		return domain.ErrInvalidChoice
	}
	p, ok := r.pollByID(pollID)
	if !ok {
		return domain.ErrPollNotFound
	}
	if !p.IsOpen {
		return domain.ErrPollClosed
	}
	return r.update(pollID, func(p *domain.Poll) {
		switch choice {
		case domain.ChoiceYee:
			p.VotesYee++
		case domain.ChoiceNay:
			p.VotesNay++
		case domain.ChoiceAbs:
			p.VotesAbs++
		}
	})
}

func (r pollRepository) AddMember(_ context.Context, member *domain.PollMember) error {
	for _, m := range r.st.pollMembers {
		if m.PollID == member.PollID && m.PersonID == member.PersonID {
			return domain.ErrConflict
		}
	}
	r.st.pollMembers[member.ID] = *member
	return nil
}

func (r pollRepository) GetMember(_ context.Context, pollID uuid.UUID, personID string) (*domain.PollMember, error) {
	for _, m := range r.st.pollMembers {
		if m.PollID == pollID && m.PersonID == personID {
			return &m, nil
		}
	}
	return nil, nil
}

func (r pollRepository) GetMemberForUpdate(ctx context.Context, pollID uuid.UUID, personID string) (*domain.PollMember, error) {
	return r.GetMember(ctx, pollID, personID)
}

func (r pollRepository) MarkVoted(_ context.Context, memberID uuid.UUID) error {
	m, ok := r.st.pollMembers[memberID]
	if !ok {
		return domain.ErrNotPollMember
	}
	m.Voted = true
	r.st.pollMembers[memberID] = m
	return nil
}

func (r pollRepository) CountMembers(_ context.Context, pollID uuid.UUID) (int, error) {
	n := 0
	for _, m := range r.st.pollMembers {
		if m.PollID == pollID {
			n++
		}
	}
	return n, nil
}

func (r pollRepository) ListUnvoted(_ context.Context, pollID uuid.UUID) ([]*domain.Person, error) {
	var people []*domain.Person
	for _, m := range r.st.pollMembers {
		if m.PollID != pollID || m.Voted {
			continue
		}
		if p, ok := r.st.people[m.PersonID]; ok {
			people = append(people, &p)
		}
	}
	slices.SortFunc(people, func(a, b *domain.Person) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	return people, nil
}
