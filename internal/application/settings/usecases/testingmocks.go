package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/domain/settings"
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

type mockSettingRepository struct {
	mock.Mock
}

func (m *mockSettingRepository) GetByGroup(ctx context.Context, groupID uint) (*settings.GroupSetting, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.GroupSetting), args.Error(1)
}

func (m *mockSettingRepository) Save(ctx context.Context, setting *settings.GroupSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
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

func newGate(memberRepo membership.Repository) *authz.Gate {
	registry := license.NewRegistry()
	return authz.NewGate(membership.NewResolver(memberRepo, registry), registry)
}

func testGroup(plan license.Plan) *resource.Resource {
	licensing, _ := license.NewContext(plan)
	res, _ := resource.New(2, resource.KindGroup, "acme", resource.VisibilityPrivate, 0, nil, licensing)
	return res
}

func ownerGrant(actorID uint) []*membership.Member {
	now := time.Now()
	m, _ := membership.ReconstructMember(7, actorID, 2, membership.Owner, membership.StateActive, membership.SourceDirect, false, 0, now, now)
	return []*membership.Member{m}
}
