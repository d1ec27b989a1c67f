package services

import (
	"testing"
	"time"

	"pointsbot/domain/entities"
	"pointsbot/domain/testhelpers"
)

// Test constants for consistent test data
const (
	TestGuildID = int64(555555555)
	TestAdminID = int64(999999)
	TestUser1ID = int64(100)
	TestUser2ID = int64(200)
	TestUser3ID = int64(300)
	TestUser4ID = int64(400)
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo       *testhelpers.MockAccountRepository
	TransactionRepo   *testhelpers.MockTransactionRepository
	ThresholdRepo     *testhelpers.MockRoleThresholdRepository
	GuildSettingsRepo *testhelpers.MockGuildSettingsRepository
	EventPublisher    *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		AccountRepo:       &testhelpers.MockAccountRepository{},
		TransactionRepo:   &testhelpers.MockTransactionRepository{},
		ThresholdRepo:     &testhelpers.MockRoleThresholdRepository{},
		GuildSettingsRepo: &testhelpers.MockGuildSettingsRepository{},
		EventPublisher:    &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.ThresholdRepo.AssertExpectations(t)
	m.GuildSettingsRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

func (m *TestMocks) ledger() *ledgerService {
	return NewLedgerService(TestGuildID, m.AccountRepo, m.TransactionRepo, m.EventPublisher).(*ledgerService)
}

func newTestAccount(userID, points int64) *entities.Account {
	now := time.Now()
	return &entities.Account{
		UserID:    userID,
		GuildID:   TestGuildID,
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testTiers() []*entities.RoleThreshold {
	return []*entities.RoleThreshold{
		{GuildID: TestGuildID, PointsRequired: 350, RoleName: "D"},
		{GuildID: TestGuildID, PointsRequired: 50, RoleName: "A"},
		{GuildID: TestGuildID, PointsRequired: 150, RoleName: "C"},
		{GuildID: TestGuildID, PointsRequired: 100, RoleName: "B"},
	}
}
