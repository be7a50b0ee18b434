package family

import (
	"fmt"

	"familybooking/internal/models"
)

var household = []models.FamilyMember{
	{ID: "1", Name: "Mom", Color: "#ef4444"},
	{ID: "2", Name: "Dad", Color: "#3b82f6"},
	{ID: "3", Name: "Siang", Color: "#10b981"},
	{ID: "4", Name: "Steph", Color: "#f59e0b"},
	{ID: "5", Name: "Josephine", Color: "#8b5cf6"},
}

// Registry is a read-only, ordered list of the people bookings can be made for.
type Registry struct {
	members []models.FamilyMember
	byID    map[string]models.FamilyMember
}

var defaultRegistry = mustRegistry(household)

// Default returns the fixed household registry.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry, rejecting empty or duplicate ids.
func NewRegistry(members []models.FamilyMember) (*Registry, error) {
	r := &Registry{
		members: make([]models.FamilyMember, 0, len(members)),
		byID:    make(map[string]models.FamilyMember, len(members)),
	}
	for _, m := range members {
		if m.ID == "" {
			return nil, fmt.Errorf("family member %q has empty id", m.Name)
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate family member id: %s", m.ID)
		}
		r.byID[m.ID] = m
		r.members = append(r.members, m)
	}
	return r, nil
}

func mustRegistry(members []models.FamilyMember) *Registry {
	r, err := NewRegistry(members)
	if err != nil {
		panic(err)
	}
	return r
}

// Members returns a copy of the members in display order.
func (r *Registry) Members() []models.FamilyMember {
	return append([]models.FamilyMember(nil), r.members...)
}

// Lookup finds a member by id.
func (r *Registry) Lookup(id string) (models.FamilyMember, bool) {
	m, ok := r.byID[id]
	return m, ok
}

func (r *Registry) Exists(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// DisplayName returns the member's name or "Unknown".
func (r *Registry) DisplayName(id string) string {
	if m, ok := r.byID[id]; ok {
		return m.Name
	}
	return models.UnknownMemberName
}

// DisplayColor returns the member's color or the default calendar color.
func (r *Registry) DisplayColor(id string) string {
	if m, ok := r.byID[id]; ok && m.Color != "" {
		return m.Color
	}
	return models.DefaultMemberColor
}
