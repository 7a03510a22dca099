// Package dto defines the transport representations of membership records.
package dto

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
)

// MemberDTO is the transport representation of one actor's grant on a
// resource.
type MemberDTO struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	ResourceID   uint      `json:"resource_id"`
	AccessLevel  int       `json:"access_level"`
	State        string    `json:"state"`
	Source       string    `json:"source"`
	LDAPOverride bool      `json:"override,omitempty"`
	MemberRoleID uint      `json:"member_role_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MemberRoleDTO is the transport representation of a custom role.
type MemberRoleDTO struct {
	ID          uint       `json:"id"`
	NamespaceID uint       `json:"namespace_id"`
	Name        string     `json:"name"`
	BaseLevel   int        `json:"base_access_level"`
	Abilities   [][]string `json:"abilities,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToMemberDTO maps a membership grant.
func ToMemberDTO(m *membership.Member) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		ID:           m.ID(),
		UserID:       m.ActorID(),
		ResourceID:   m.ResourceID(),
		AccessLevel:  int(m.AccessLevel()),
		State:        m.State().String(),
		Source:       string(m.Source()),
		LDAPOverride: m.LDAPOverride(),
		MemberRoleID: m.MemberRoleID(),
		CreatedAt:    m.CreatedAt(),
		UpdatedAt:    m.UpdatedAt(),
	}
}

// ToMemberDTOs maps a list of grants.
func ToMemberDTOs(members []*membership.Member) []*MemberDTO {
	dtos := make([]*MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = ToMemberDTO(m)
	}
	return dtos
}

// ToMemberRoleDTO maps a custom role together with its synced abilities.
func ToMemberRoleDTO(r *membership.MemberRole, abilities [][]string) *MemberRoleDTO {
	if r == nil {
		return nil
	}
	return &MemberRoleDTO{
		ID:          r.ID(),
		NamespaceID: r.NamespaceID(),
		Name:        r.Name(),
		BaseLevel:   int(r.BaseLevel()),
		Abilities:   abilities,
		CreatedAt:   r.CreatedAt(),
	}
}
