package domain

// Identity is the request-scoped result of resolving a credential. The zero
// value is the anonymous identity.
type Identity struct {
	User    *Person
	IsAdmin bool
}

func Anonymous() Identity {
	return Identity{}
}

func (i Identity) IsAuthenticated() bool {
	return i.User != nil
}
