package protection

import "context"

// BranchRepository defines persistence operations for protected branches.
type BranchRepository interface {
	Create(ctx context.Context, branch *ProtectedBranch) error
	Update(ctx context.Context, branch *ProtectedBranch) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*ProtectedBranch, error)
	GetByName(ctx context.Context, scope ScopeKind, scopeID uint, name string) (*ProtectedBranch, error)

	// ListForProject returns the project's own rules plus the rules of every
	// ancestor group, loaded in one query against the ancestor id set.
	ListForProject(ctx context.Context, projectID uint, ancestorGroupIDs []uint, offset, limit int, sortAsc bool) ([]*ProtectedBranch, int64, error)
	ListForGroup(ctx context.Context, groupID uint, offset, limit int, sortAsc bool) ([]*ProtectedBranch, int64, error)
}

// EnvironmentRepository defines persistence operations for protected
// environments.
type EnvironmentRepository interface {
	Create(ctx context.Context, env *ProtectedEnvironment) error
	Update(ctx context.Context, env *ProtectedEnvironment) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*ProtectedEnvironment, error)
	GetByName(ctx context.Context, scope ScopeKind, scopeID uint, name string) (*ProtectedEnvironment, error)
	ListForScope(ctx context.Context, scope ScopeKind, scopeID uint, offset, limit int, sortAsc bool) ([]*ProtectedEnvironment, int64, error)
}

// Deployment is the read model approvals are validated against: it pins the
// head SHA and the environment the deployment targets.
type Deployment struct {
	ID              uint
	ProjectID       uint
	EnvironmentName string
	SHA             string
	Status          string
}

// DeploymentRepository resolves deployments for approval validation.
type DeploymentRepository interface {
	GetByID(ctx context.Context, id uint) (*Deployment, error)
}

// DeploymentApprovalRepository defines persistence operations for deployment
// approvals.
type DeploymentApprovalRepository interface {
	// Create persists an approval; a duplicate (deployment, approver) pair
	// must fail with a conflict rather than inserting a second row.
	Create(ctx context.Context, approval *DeploymentApproval) error
	ListForDeployment(ctx context.Context, deploymentID uint) ([]*DeploymentApproval, error)
}

// StatusCheckRepository defines persistence operations for external status
// checks.
type StatusCheckRepository interface {
	Create(ctx context.Context, check *ExternalStatusCheck) error
	Update(ctx context.Context, check *ExternalStatusCheck) error
	GetByID(ctx context.Context, id uint) (*ExternalStatusCheck, error)
	ListForProject(ctx context.Context, projectID uint) ([]*ExternalStatusCheck, error)
}
