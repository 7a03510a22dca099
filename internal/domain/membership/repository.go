package membership

import "context"

// Repository defines persistence operations for membership records.
type Repository interface {
	Create(ctx context.Context, member *Member) error
	Update(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id uint) (*Member, error)

	// GetByActorAndResources loads all of the actor's grants across the given
	// resource ids in a single query. The resolver depends on this to stay
	// O(depth) without per-ancestor lookups.
	GetByActorAndResources(ctx context.Context, actorID uint, resourceIDs []uint) ([]*Member, error)

	// ListPending returns awaiting members of a resource, newest first.
	ListPending(ctx context.Context, resourceID uint, offset, limit int) ([]*Member, int64, error)

	// CountBillable counts active and awaiting members across a namespace
	// hierarchy for seat cap enforcement.
	CountBillable(ctx context.Context, namespaceID uint) (int64, error)

	// GroupIDsForActor returns ids of groups the actor is an active member
	// of, used to qualify group-scoped protection entries.
	GroupIDsForActor(ctx context.Context, actorID uint) ([]uint, error)
}
