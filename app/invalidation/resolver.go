// Package invalidation maps an entity mutation to the set of cached view
// regions that must be marked stale. The dependency table is hand-curated:
// "mutating entity X invalidates region Y" is declared for every region whose
// cached view embeds fields copied from X. Transitive edges are not computed;
// each edge is declared explicitly.
package invalidation

import (
	"fmt"
	"sort"

	"institute-admin/app/models"
)

// Entity names a mutable record type the rest of the system edits.
type Entity string

const (
	EntityStudent     Entity = "student"
	EntityPayment     Entity = "payment"
	EntityFee         Entity = "fee"
	EntityEnrollment  Entity = "enrollment"
	EntityReservation Entity = "reservation"
	EntityEmployee    Entity = "employee"
)

// Operation is the kind of mutation applied to an entity.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// RegionKey identifies one cached, derived view that can be marked stale and
// refetched.
type RegionKey string

// Descriptor is one declared dependency edge: either a static region key or
// an id-parameterized generator for detail-level regions.
type Descriptor struct {
	key      RegionKey
	generate func(id string) []RegionKey
}

// Static declares a list-level region invalidated by any mutation of the
// entity.
func Static(key RegionKey) Descriptor {
	return Descriptor{key: key}
}

// ByID declares a detail-level region keyed by the mutated record's id.
func ByID(format string) Descriptor {
	return Descriptor{generate: func(id string) []RegionKey {
		return []RegionKey{RegionKey(fmt.Sprintf(format, id))}
	}}
}

// ByIDFunc declares a generator producing several detail-level regions per id.
func ByIDFunc(fn func(id string) []RegionKey) Descriptor {
	return Descriptor{generate: fn}
}

type Rule struct {
	Entity Entity
	Op     Operation
}

// Resolver answers "which regions went stale" for a mutation. One table
// serves every institution context; keys are namespaced by context at resolve
// time so the two deployments cannot drift apart.
type Resolver struct {
	rules map[Rule][]Descriptor
}

func NewResolver(rules map[Rule][]Descriptor) *Resolver {
	return &Resolver{rules: rules}
}

// Resolve returns the deduplicated set of regions invalidated by the given
// mutation, namespaced by institution context. Order is not significant.
//
// A generator descriptor needs the mutated record's id; when the id is empty
// the descriptor emits nothing, so a detail-level region can stay stale
// without any error being raised. This best-effort degradation is deliberate
// and covered by tests.
func (r *Resolver) Resolve(ctx models.InstitutionContext, entity Entity, op Operation, id string) []RegionKey {
	descriptors, ok := r.rules[Rule{Entity: entity, Op: op}]
	if !ok {
		return nil
	}

	seen := make(map[RegionKey]bool)
	var keys []RegionKey
	add := func(key RegionKey) {
		namespaced := RegionKey(fmt.Sprintf("%s:%s", ctx, key))
		if !seen[namespaced] {
			seen[namespaced] = true
			keys = append(keys, namespaced)
		}
	}

	for _, d := range descriptors {
		if d.generate != nil {
			if id == "" {
				continue
			}
			for _, key := range d.generate(id) {
				add(key)
			}
			continue
		}
		add(d.key)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
