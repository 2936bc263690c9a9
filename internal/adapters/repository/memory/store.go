// Package memory is a process-local ports.Store. Transactions are fully
// serialized and run against a private copy of the state that replaces the
// shared one only on success.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type state struct {
	people       map[string]domain.Person
	emails       map[string]string
	groups       map[string]domain.Group
	groupMembers map[uuid.UUID]map[string]struct{}
	polls        map[string]domain.Poll
	pollMembers  map[uuid.UUID]domain.PollMember
}

func newState() *state {
	return &state{
		people:       make(map[string]domain.Person),
		emails:       make(map[string]string),
		groups:       make(map[string]domain.Group),
		groupMembers: make(map[uuid.UUID]map[string]struct{}),
		polls:        make(map[string]domain.Poll),
		pollMembers:  make(map[uuid.UUID]domain.PollMember),
	}
}

func (s *state) clone() *state {
	c := &state{
		people:       maps.Clone(s.people),
		emails:       maps.Clone(s.emails),
		groups:       maps.Clone(s.groups),
		groupMembers: make(map[uuid.UUID]map[string]struct{}, len(s.groupMembers)),
		polls:        maps.Clone(s.polls),
		pollMembers:  maps.Clone(s.pollMembers),
	}
	for id, members := range s.groupMembers {
		c.groupMembers[id] = maps.Clone(members)
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

var _ ports.Store = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	st *state
}

func (t *tx) People() ports.PersonRepository { return personRepository{t.st} }
func (t *tx) Emails() ports.EmailRepository  { return emailRepository{t.st} }
func (t *tx) Groups() ports.GroupRepository  { return groupRepository{t.st} }
func (t *tx) Polls() ports.PollRepository    { return pollRepository{t.st} }
