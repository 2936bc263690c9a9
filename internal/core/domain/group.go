package domain

import "github.com/google/uuid"

type Group struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	Name string    `json:"name"`
}

// MembershipDelta is what a group reconciliation pass changed.
type MembershipDelta struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

func (d MembershipDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// IdentityDelta is what an identity reconciliation pass changed. People holds
// the ids of persons created or renamed; the alias slices hold addresses.
type IdentityDelta struct {
	People         []string `json:"people"`
	AliasesAdded   []string `json:"aliases_added"`
	AliasesMoved   []string `json:"aliases_moved"`
	AliasesRemoved []string `json:"aliases_removed"`
}

func (d IdentityDelta) Empty() bool {
	return len(d.People) == 0 && len(d.AliasesAdded) == 0 &&
		len(d.AliasesMoved) == 0 && len(d.AliasesRemoved) == 0
}
