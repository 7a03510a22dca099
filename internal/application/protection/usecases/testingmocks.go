package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type mockResourceRepository struct {
	mock.Mock
}

func (m *mockResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *mockResourceRepository) Update(ctx context.Context, res *resource.Resource) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *mockResourceRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockResourceRepository) GetByID(ctx context.Context, id uint) (*resource.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resource.Resource), args.Error(1)
}

func (m *mockResourceRepository) GetByKindAndID(ctx context.Context, kind resource.Kind, id uint) (*resource.Resource, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resource.Resource), args.Error(1)
}

type mockMemberRepository struct {
	mock.Mock
}

func (m *mockMemberRepository) Create(ctx context.Context, member *membership.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockMemberRepository) Update(ctx context.Context, member *membership.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockMemberRepository) GetByID(ctx context.Context, id uint) (*membership.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *mockMemberRepository) GetByActorAndResources(ctx context.Context, actorID uint, resourceIDs []uint) ([]*membership.Member, error) {
	args := m.Called(ctx, actorID, resourceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*membership.Member), args.Error(1)
}

func (m *mockMemberRepository) ListPending(ctx context.Context, resourceID uint, offset, limit int) ([]*membership.Member, int64, error) {
	args := m.Called(ctx, resourceID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*membership.Member), args.Get(1).(int64), args.Error(2)
}

func (m *mockMemberRepository) CountBillable(ctx context.Context, namespaceID uint) (int64, error) {
	args := m.Called(ctx, namespaceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMemberRepository) GroupIDsForActor(ctx context.Context, actorID uint) ([]uint, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

type mockBranchRepository struct {
	mock.Mock
}

func (m *mockBranchRepository) Create(ctx context.Context, branch *protection.ProtectedBranch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *mockBranchRepository) Update(ctx context.Context, branch *protection.ProtectedBranch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *mockBranchRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBranchRepository) GetByID(ctx context.Context, id uint) (*protection.ProtectedBranch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protection.ProtectedBranch), args.Error(1)
}

func (m *mockBranchRepository) GetByName(ctx context.Context, scope protection.ScopeKind, scopeID uint, name string) (*protection.ProtectedBranch, error) {
	args := m.Called(ctx, scope, scopeID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protection.ProtectedBranch), args.Error(1)
}

func (m *mockBranchRepository) ListForProject(ctx context.Context, projectID uint, ancestorGroupIDs []uint, offset, limit int, sortAsc bool) ([]*protection.ProtectedBranch, int64, error) {
	args := m.Called(ctx, projectID, ancestorGroupIDs, offset, limit, sortAsc)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*protection.ProtectedBranch), args.Get(1).(int64), args.Error(2)
}

func (m *mockBranchRepository) ListForGroup(ctx context.Context, groupID uint, offset, limit int, sortAsc bool) ([]*protection.ProtectedBranch, int64, error) {
	args := m.Called(ctx, groupID, offset, limit, sortAsc)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*protection.ProtectedBranch), args.Get(1).(int64), args.Error(2)
}

type mockEnvironmentRepository struct {
	mock.Mock
}

func (m *mockEnvironmentRepository) Create(ctx context.Context, env *protection.ProtectedEnvironment) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *mockEnvironmentRepository) Update(ctx context.Context, env *protection.ProtectedEnvironment) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *mockEnvironmentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockEnvironmentRepository) GetByID(ctx context.Context, id uint) (*protection.ProtectedEnvironment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protection.ProtectedEnvironment), args.Error(1)
}

func (m *mockEnvironmentRepository) GetByName(ctx context.Context, scope protection.ScopeKind, scopeID uint, name string) (*protection.ProtectedEnvironment, error) {
	args := m.Called(ctx, scope, scopeID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protection.ProtectedEnvironment), args.Error(1)
}

func (m *mockEnvironmentRepository) ListForScope(ctx context.Context, scope protection.ScopeKind, scopeID uint, offset, limit int, sortAsc bool) ([]*protection.ProtectedEnvironment, int64, error) {
	args := m.Called(ctx, scope, scopeID, offset, limit, sortAsc)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*protection.ProtectedEnvironment), args.Get(1).(int64), args.Error(2)
}

type mockDeploymentRepository struct {
	mock.Mock
}

func (m *mockDeploymentRepository) GetByID(ctx context.Context, id uint) (*protection.Deployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protection.Deployment), args.Error(1)
}

type mockDeploymentApprovalRepository struct {
	mock.Mock
}

func (m *mockDeploymentApprovalRepository) Create(ctx context.Context, approval *protection.DeploymentApproval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}

func (m *mockDeploymentApprovalRepository) ListForDeployment(ctx context.Context, deploymentID uint) ([]*protection.DeploymentApproval, error) {
	args := m.Called(ctx, deploymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*protection.DeploymentApproval), args.Error(1)
}

type mockStatusCheckRepository struct {
	mock.Mock
}

func (m *mockStatusCheckRepository) Create(ctx context.Context, check *protection.ExternalStatusCheck) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

func (m *mockStatusCheckRepository) Update(ctx context.Context, check *protection.ExternalStatusCheck) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

func (m *mockStatusCheckRepository) GetByID(ctx context.Context, id uint) (*protection.ExternalStatusCheck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protection.ExternalStatusCheck), args.Error(1)
}

func (m *mockStatusCheckRepository) ListForProject(ctx context.Context, projectID uint) ([]*protection.ExternalStatusCheck, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*protection.ExternalStatusCheck), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, event audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *mockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *mockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *mockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *mockLogger) With(args ...any) logger.Interface {
	callArgs := m.Called(args)
	if callArgs.Get(0) == nil {
		return m
	}
	return callArgs.Get(0).(logger.Interface)
}

func (m *mockLogger) Named(name string) logger.Interface {
	callArgs := m.Called(name)
	if callArgs.Get(0) == nil {
		return m
	}
	return callArgs.Get(0).(logger.Interface)
}

func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Infow(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

// newGate wires a real gate over the mocked membership repository so tests
// exercise the actual deny ordering instead of a stubbed decision.
func newGate(memberRepo membership.Repository) *authz.Gate {
	registry := license.NewRegistry()
	return authz.NewGate(membership.NewResolver(memberRepo, registry), registry)
}

func testActor(id uint) *membership.Actor {
	actor, _ := membership.NewActor(id, "dev", false)
	return actor
}

func testResource(id uint, kind resource.Kind, visibility resource.Visibility, parentID uint, ancestors []uint, plan license.Plan) *resource.Resource {
	licensing, _ := license.NewContext(plan)
	res, _ := resource.New(id, kind, "acme", visibility, parentID, ancestors, licensing)
	return res
}

func activeGrant(id, actorID, resourceID uint, level membership.AccessLevel) *membership.Member {
	now := time.Now()
	m, _ := membership.ReconstructMember(id, actorID, resourceID, level, membership.StateActive, membership.SourceDirect, false, 0, now, now)
	return m
}
