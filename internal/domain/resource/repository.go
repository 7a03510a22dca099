package resource

import "context"

// Repository defines persistence operations for resource nodes. Loading a
// resource resolves its ancestor chain and licensing context in the same
// round trip so callers never walk associations.
type Repository interface {
	Create(ctx context.Context, res *Resource) error
	Update(ctx context.Context, res *Resource) error
	Delete(ctx context.Context, id uint) error

	// GetByID returns the resource with its ancestor ids and licensing
	// context populated, or ErrResourceNotFound.
	GetByID(ctx context.Context, id uint) (*Resource, error)

	// GetByKindAndID narrows the lookup to one kind; a resource of another
	// kind under the same id is ErrResourceNotFound.
	GetByKindAndID(ctx context.Context, kind Kind, id uint) (*Resource, error)
}
