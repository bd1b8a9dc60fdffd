package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"guildkeeper/application"
	"guildkeeper/database"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
	"guildkeeper/infrastructure"
	"guildkeeper/repository"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/require"
)

const (
	testGuildID      = int64(555555555)
	otherTestGuildID = int64(666666666)
	testMemberID     = int64(100)
	testModeratorID  = int64(999)
)

// testUnitOfWorkFactory hands out real units of work against the test database
type testUnitOfWorkFactory struct {
	db *database.DB
}

func (f *testUnitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork {
	publisher := infrastructure.NewNATSTransactionalPublisher(infrastructure.NewNoopEventPublisher())
	return repository.CreateTestUnitOfWork(f.db, guildID, publisher)
}

func setupTestFactory(t *testing.T) (*testutil.TestDatabase, *testUnitOfWorkFactory) {
	t.Helper()
	testDB := testutil.SetupTestDatabase(t)
	return testDB, &testUnitOfWorkFactory{db: testDB.DB}
}

func seedBalance(t *testing.T, db *database.DB, guildID, memberID, amount int64) {
	t.Helper()
	repo := repository.NewMemberLedgerRepositoryScoped(db, guildID)
	_, err := repo.ApplyDelta(context.Background(), memberID, entities.LedgerDelta{Currency: amount})
	require.NoError(t, err)
}

func loadLedger(t *testing.T, db *database.DB, guildID, memberID int64) *entities.MemberLedger {
	t.Helper()
	ledger, err := repository.NewMemberLedgerRepositoryScoped(db, guildID).GetOrCreate(context.Background(), memberID)
	require.NoError(t, err)
	return ledger
}

type fakeGranter struct {
	mu       sync.Mutex
	held     map[int64]bool
	grantErr error
	granted  []int64
}

func (g *fakeGranter) HasEntitlement(ctx context.Context, guildID, memberID, roleID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held[roleID], nil
}

func (g *fakeGranter) GrantEntitlement(ctx context.Context, guildID, memberID, roleID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.grantErr != nil {
		return g.grantErr
	}
	g.granted = append(g.granted, roleID)
	return nil
}

type fakeActuator struct {
	mu        sync.Mutex
	notified  []int64
	kicked    []int64
	banned    []int64
	unbanned  []int64
	actionErr error
	unbanErrs map[int64]error
}

func (a *fakeActuator) NotifyMember(ctx context.Context, guildID, memberID int64, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notified = append(a.notified, memberID)
	return errors.New("direct messages disabled")
}

func (a *fakeActuator) Kick(ctx context.Context, guildID, memberID int64, reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.actionErr != nil {
		return a.actionErr
	}
	a.kicked = append(a.kicked, memberID)
	return nil
}

func (a *fakeActuator) Ban(ctx context.Context, guildID, memberID int64, reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.actionErr != nil {
		return a.actionErr
	}
	a.banned = append(a.banned, memberID)
	return nil
}

func (a *fakeActuator) Unban(ctx context.Context, guildID, memberID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.unbanErrs[memberID]; err != nil {
		return err
	}
	a.unbanned = append(a.unbanned, memberID)
	return nil
}

type fakePresence struct {
	channels map[int64][]*entities.VoiceChannelPresence
	failFor  map[int64]bool
}

func (p *fakePresence) VoiceChannels(ctx context.Context, guildID int64) ([]*entities.VoiceChannelPresence, error) {
	if p.failFor[guildID] {
		return nil, errors.New("guild unavailable")
	}
	return p.channels[guildID], nil
}

type fakeDiscovery []int64

func (d fakeDiscovery) ConnectedGuildIDs(ctx context.Context) ([]int64, error) {
	return d, nil
}

var (
	_ interfaces.EntitlementGranter  = (*fakeGranter)(nil)
	_ interfaces.EnforcementActuator = (*fakeActuator)(nil)
	_ interfaces.PresenceSource      = (*fakePresence)(nil)
)
