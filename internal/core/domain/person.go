package domain

import "strings"

type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SecretKey string `json:"-"`
}

// HasKey reports whether a secret key has been issued to the person.
func (p *Person) HasKey() bool {
	return p.SecretKey != ""
}

type Email struct {
	Address  string `json:"address"`
	PersonID string `json:"person_id"`
}

// MaskEmail keeps the first character of the local part and the domain,
// e.g. "a***@example.com". Use it wherever an address is logged.
func MaskEmail(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	local, host, ok := strings.Cut(address, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + host
}

// DesiredPerson is one person of an externally supplied desired state.
type DesiredPerson struct {
	ID   string
	Name string
}
