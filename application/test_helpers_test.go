package application

import (
	"context"
	"sort"
	"sync"

	"pointsbot/domain"
	"pointsbot/domain/entities"
	"pointsbot/domain/interfaces"
	"pointsbot/domain/testhelpers"
)

const (
	testGuildID   = int64(555555555)
	testChannelID = int64(777)
	testUser1ID   = int64(100)
	testUser2ID   = int64(200)
)

// testUnitOfWork hands out shared repository mocks
type testUnitOfWork struct {
	guildID       int64
	accounts      *testhelpers.MockAccountRepository
	transactions  *testhelpers.MockTransactionRepository
	thresholds    *testhelpers.MockRoleThresholdRepository
	guildSettings *testhelpers.MockGuildSettingsRepository
	publisher     *testhelpers.MockEventPublisher
	beginErr      error
	committed     bool
}

func (u *testUnitOfWork) Begin(ctx context.Context) error { return u.beginErr }
func (u *testUnitOfWork) Commit() error                    { u.committed = true; return nil }
func (u *testUnitOfWork) Rollback() error                  { return nil }
func (u *testUnitOfWork) GuildID() int64                   { return u.guildID }

func (u *testUnitOfWork) AccountRepository() interfaces.AccountRepository { return u.accounts }
func (u *testUnitOfWork) TransactionRepository() interfaces.TransactionRepository {
	return u.transactions
}
func (u *testUnitOfWork) RoleThresholdRepository() interfaces.RoleThresholdRepository {
	return u.thresholds
}
func (u *testUnitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	return u.guildSettings
}
func (u *testUnitOfWork) EventBus() interfaces.EventPublisher { return u.publisher }

// testUnitOfWorkFactory returns the same unit of work for every guild
type testUnitOfWorkFactory struct {
	uow *testUnitOfWork
}

func newTestUnitOfWorkFactory() *testUnitOfWorkFactory {
	return &testUnitOfWorkFactory{uow: &testUnitOfWork{
		guildID:       testGuildID,
		accounts:      &testhelpers.MockAccountRepository{},
		transactions:  &testhelpers.MockTransactionRepository{},
		thresholds:    &testhelpers.MockRoleThresholdRepository{},
		guildSettings: &testhelpers.MockGuildSettingsRepository{},
		publisher:     &testhelpers.MockEventPublisher{},
	}}
}

func (f *testUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	f.uow.guildID = guildID
	return f.uow
}

// fakeRoleManager keeps member roles in memory
type fakeRoleManager struct {
	mu          sync.Mutex
	guildRoles  map[string]bool
	memberRoles map[int64]map[string]bool
	created     []RoleSpec
	grants      []string
	revokes     []string
	grantErr    error
}

func newFakeRoleManager() *fakeRoleManager {
	return &fakeRoleManager{
		guildRoles:  make(map[string]bool),
		memberRoles: make(map[int64]map[string]bool),
	}
}

func (m *fakeRoleManager) give(userID int64, roleNames ...string) {
	if m.memberRoles[userID] == nil {
		m.memberRoles[userID] = make(map[string]bool)
	}
	for _, name := range roleNames {
		m.guildRoles[name] = true
		m.memberRoles[userID][name] = true
	}
}

func (m *fakeRoleManager) held(userID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for name := range m.memberRoles[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *fakeRoleManager) MemberRoleNames(ctx context.Context, guildID, userID int64) ([]string, error) {
	return m.held(userID), nil
}

func (m *fakeRoleManager) MembersWithRoles(ctx context.Context, guildID int64, roleNames []string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var members []int64
	for userID, roles := range m.memberRoles {
		for _, name := range roleNames {
			if roles[name] {
				members = append(members, userID)
				break
			}
		}
	}
	return members, nil
}

func (m *fakeRoleManager) EnsureRole(ctx context.Context, guildID int64, spec RoleSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.guildRoles[spec.Name] {
		m.guildRoles[spec.Name] = true
		m.created = append(m.created, spec)
	}
	return "role-" + spec.Name, nil
}

func (m *fakeRoleManager) Grant(ctx context.Context, guildID, userID int64, roleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.grantErr != nil {
		return m.grantErr
	}
	if !m.guildRoles[roleName] {
		return domain.ErrRoleNotFound
	}
	if m.memberRoles[userID] == nil {
		m.memberRoles[userID] = make(map[string]bool)
	}
	m.memberRoles[userID][roleName] = true
	m.grants = append(m.grants, roleName)
	return nil
}

func (m *fakeRoleManager) Revoke(ctx context.Context, guildID, userID int64, roleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.memberRoles[userID], roleName)
	m.revokes = append(m.revokes, roleName)
	return nil
}

// fakeAnnouncer records tier announcements
type fakeAnnouncer struct {
	announcements []announcement
}

type announcement struct {
	channelID int64
	userID    int64
	tier      string
	promoted  bool
}

func (a *fakeAnnouncer) AnnounceTierChange(ctx context.Context, channelID, guildID, userID int64, newTier string, promoted bool) error {
	a.announcements = append(a.announcements, announcement{
		channelID: channelID,
		userID:    userID,
		tier:      newTier,
		promoted:  promoted,
	})
	return nil
}

func testTiers() []*entities.RoleThreshold {
	return []*entities.RoleThreshold{
		{GuildID: testGuildID, PointsRequired: 50, RoleName: "A", RoleColor: "#3498db"},
		{GuildID: testGuildID, PointsRequired: 100, RoleName: "B", RoleColor: "#3498db"},
		{GuildID: testGuildID, PointsRequired: 150, RoleName: "C", RoleColor: "#3498db"},
		{GuildID: testGuildID, PointsRequired: 350, RoleName: "D", RoleColor: "#3498db"},
	}
}
