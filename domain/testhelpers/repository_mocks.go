package testhelpers

import (
	"context"

	"pointsbot/domain/entities"
	"pointsbot/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdatePoints(ctx context.Context, userID int64, points int64) error {
	args := m.Called(ctx, userID, points)
	return args.Error(0)
}

func (m *MockAccountRepository) CountWithMorePoints(ctx context.Context, points int64) (int64, error) {
	args := m.Called(ctx, points)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) GetLeaderboard(ctx context.Context, limit, offset int) ([]*entities.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetStats(ctx context.Context) (*entities.GuildStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildStats), args.Error(1)
}

func (m *MockAccountRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, transaction *entities.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoleThresholdRepository is a mock implementation of RoleThresholdRepository
type MockRoleThresholdRepository struct {
	mock.Mock
}

func (m *MockRoleThresholdRepository) GetAll(ctx context.Context) ([]*entities.RoleThreshold, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RoleThreshold), args.Error(1)
}

func (m *MockRoleThresholdRepository) GetByPoints(ctx context.Context, pointsRequired int64) (*entities.RoleThreshold, error) {
	args := m.Called(ctx, pointsRequired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RoleThreshold), args.Error(1)
}

func (m *MockRoleThresholdRepository) Upsert(ctx context.Context, threshold *entities.RoleThreshold) error {
	args := m.Called(ctx, threshold)
	return args.Error(0)
}

func (m *MockRoleThresholdRepository) Delete(ctx context.Context, pointsRequired int64) (bool, error) {
	args := m.Called(ctx, pointsRequired)
	return args.Bool(0), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context) (*entities.GuildSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
