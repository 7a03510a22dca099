// Package resource models the polymorphic resource graph authorization
// decisions run against: groups, projects, and the nested entities that
// inherit their protection context from a parent project or group.
package resource

import (
	"fmt"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
)

// Kind represents the type of resource
type Kind string

const (
	KindGroup        Kind = "group"
	KindProject      Kind = "project"
	KindMergeRequest Kind = "merge_request"
	KindEnvironment  Kind = "environment"
	KindBranch       Kind = "branch"
)

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindGroup, KindProject, KindMergeRequest, KindEnvironment, KindBranch:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// Visibility represents who may see a resource at all
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityInternal Visibility = "internal"
	VisibilityPrivate  Visibility = "private"
)

// IsValid checks if the visibility is valid
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityInternal, VisibilityPrivate:
		return true
	default:
		return false
	}
}

// String returns the string representation of the visibility
func (v Visibility) String() string {
	return string(v)
}

// Resource is a node in the resource graph. The parent reference is
// non-owning and used only for lookup; the ancestor chain is resolved once
// when the resource is loaded so role resolution never walks associations.
type Resource struct {
	id          uint
	kind        Kind
	name        string
	visibility  Visibility
	parentID    uint // zero for top-level groups
	ancestorIDs []uint
	licensing   *license.Context
}

// New creates a resource node.
func New(id uint, kind Kind, name string, visibility Visibility, parentID uint, ancestorIDs []uint, licensing *license.Context) (*Resource, error) {
	if id == 0 {
		return nil, fmt.Errorf("resource ID cannot be zero")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid resource kind: %s", kind)
	}
	if !visibility.IsValid() {
		return nil, fmt.Errorf("invalid visibility: %s", visibility)
	}

	return &Resource{
		id:          id,
		kind:        kind,
		name:        name,
		visibility:  visibility,
		parentID:    parentID,
		ancestorIDs: ancestorIDs,
		licensing:   licensing,
	}, nil
}

// ID returns the resource ID
func (r *Resource) ID() uint {
	return r.id
}

// Kind returns the resource kind
func (r *Resource) Kind() Kind {
	return r.kind
}

// Name returns the resource name
func (r *Resource) Name() string {
	return r.name
}

// Visibility returns the resource visibility
func (r *Resource) Visibility() Visibility {
	return r.visibility
}

// ParentID returns the parent resource ID, zero for top-level groups
func (r *Resource) ParentID() uint {
	return r.parentID
}

// AncestorIDs returns the precomputed ancestor chain, nearest first.
func (r *Resource) AncestorIDs() []uint {
	return r.ancestorIDs
}

// SelfAndAncestorIDs returns the resource's own id followed by its ancestors.
func (r *Resource) SelfAndAncestorIDs() []uint {
	ids := make([]uint, 0, len(r.ancestorIDs)+1)
	ids = append(ids, r.id)
	ids = append(ids, r.ancestorIDs...)
	return ids
}

// IsTopLevelGroup reports whether the resource is a group without a parent.
func (r *Resource) IsTopLevelGroup() bool {
	return r.kind == KindGroup && r.parentID == 0
}

// Licensing returns the licensing context governing this resource.
func (r *Resource) Licensing() *license.Context {
	return r.licensing
}
