// Package manifest parses the declarative membership file consumed by
// rostersync and feeds it to the reconciler.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
	"gopkg.in/yaml.v3"
)

type Manifest struct {
	People []Person `yaml:"people"`
	Groups []Group  `yaml:"groups"`
}

type Person struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Emails []string `yaml:"emails"`
}

type Group struct {
	Slug    string   `yaml:"slug"`
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	var errs []error
	ids := make(map[string]struct{})
	aliases := make(map[string]string)
	for i, p := range m.People {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("people[%d]: id is required", i))
			continue
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("people[%d]: duplicate id %q", i, p.ID))
		}
		ids[p.ID] = struct{}{}
		for _, e := range p.Emails {
			address := strings.ToLower(strings.TrimSpace(e))
			if owner, dup := aliases[address]; dup && owner != p.ID {
				errs = append(errs, fmt.Errorf("email %q listed under both %q and %q", address, owner, p.ID))
			}
			aliases[address] = p.ID
		}
	}

	slugs := make(map[string]struct{})
	for i, g := range m.Groups {
		if g.Slug == "" || g.Name == "" {
			errs = append(errs, fmt.Errorf("groups[%d]: slug and name are required", i))
			continue
		}
		if _, dup := slugs[g.Slug]; dup {
			errs = append(errs, fmt.Errorf("groups[%d]: duplicate slug %q", i, g.Slug))
		}
		slugs[g.Slug] = struct{}{}
	}
	return errors.Join(errs...)
}

func (m *Manifest) DesiredPeople() []domain.DesiredPerson {
	people := make([]domain.DesiredPerson, 0, len(m.People))
	for _, p := range m.People {
		people = append(people, domain.DesiredPerson{ID: p.ID, Name: p.Name})
	}
	return people
}

// DesiredAliases maps every listed address to its owner's id.
func (m *Manifest) DesiredAliases() map[string]string {
	aliases := make(map[string]string)
	for _, p := range m.People {
		for _, e := range p.Emails {
			aliases[e] = p.ID
		}
	}
	return aliases
}

// ErrNoPeople guards against an empty or truncated manifest retiring every
// alias, admins included.
var ErrNoPeople = errors.New("manifest lists no people, refusing to remove every identity")

type ApplyOptions struct {
	// AllowEmpty lets a manifest without people clear all identities.
	AllowEmpty bool
}

type Report struct {
	Identities domain.IdentityDelta
	Groups     map[string]domain.MembershipDelta
}

// Apply reconciles identities first, then each group in manifest order. Each
// step is its own transaction; a failing group stops the run but leaves
// earlier steps committed. Re-running converges.
func Apply(ctx context.Context, rec ports.ReconcileService, m *Manifest, opts ApplyOptions) (Report, error) {
	report := Report{Groups: make(map[string]domain.MembershipDelta)}
	if len(m.People) == 0 && !opts.AllowEmpty {
		return report, ErrNoPeople
	}

	delta, err := rec.ReconcileIdentities(ctx, m.DesiredPeople(), m.DesiredAliases())
	if err != nil {
		return report, fmt.Errorf("failed to reconcile identities: %w", err)
	}
	report.Identities = delta

	for _, g := range m.Groups {
		delta, err := rec.ReconcileGroup(ctx, g.Slug, g.Name, g.Members)
		if err != nil {
			return report, fmt.Errorf("failed to reconcile group %s: %w", g.Slug, err)
		}
		report.Groups[g.Slug] = delta
	}
	return report, nil
}
