package ports

import "context"

// Store is the transactional boundary. Every read and write a service performs
// happens inside InTx; fn's changes commit iff it returns nil.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the repositories bound to a single open transaction.
type Tx interface {
	People() PersonRepository
	Emails() EmailRepository
	Groups() GroupRepository
	Polls() PollRepository
}
