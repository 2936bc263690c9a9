package domain

import (
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	IsOpen    bool      `json:"is_open"`
	IsVisible bool      `json:"is_visible"`
	VotesYee  int       `json:"votes_yee"`
	VotesNay  int       `json:"votes_nay"`
	VotesAbs  int       `json:"votes_abs"`
	CreatedAt time.Time `json:"created_at"`

	// RosterSize is not a column; services fill it from the poll's members.
	RosterSize int `json:"roster_size"`
}

// VotesTotal is derived from the three counters and never stored.
func (p *Poll) VotesTotal() int {
	return p.VotesYee + p.VotesNay + p.VotesAbs
}

type PollMember struct {
	ID       uuid.UUID `json:"id"`
	PollID   uuid.UUID `json:"poll_id"`
	PersonID string    `json:"person_id"`
	Voted    bool      `json:"voted"`
}

type Choice string

const (
	ChoiceYee Choice = "yee"
	ChoiceNay Choice = "nay"
	ChoiceAbs Choice = "abs"
)

// ParseChoice accepts exactly one of the three vote tokens.
func ParseChoice(s string) (Choice, bool) {
	switch c := Choice(s); c {
	case ChoiceYee, ChoiceNay, ChoiceAbs:
		return c, true
	}
	return "", false
}

// VoteOutcome is the non-error result of casting a vote.
type VoteOutcome int

const (
	VoteRecorded VoteOutcome = iota + 1
	VoteAlreadyCast
)

func (o VoteOutcome) String() string {
	switch o {
	case VoteRecorded:
		return "recorded"
	case VoteAlreadyCast:
		return "already_voted"
	}
	return "unknown"
}
