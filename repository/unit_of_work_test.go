package repository

import (
	"context"
	"testing"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransactionalPublisher struct {
	mock.Mock
}

func (m *mockTransactionalPublisher) Publish(event events.Event) error {
	return m.Called(event).Error(0)
}

func (m *mockTransactionalPublisher) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTransactionalPublisher) Discard() {
	m.Called()
}

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	publisher := new(mockTransactionalPublisher)
	publisher.On("Flush", ctx).Return(nil)

	uow := CreateTestUnitOfWork(testDB.DB, testGuildID, publisher)
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.MemberLedgerRepository().ApplyDelta(ctx, 1, entities.MessageDelta(time.Now()))
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	publisher.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Discard")

	ledger, err := NewMemberLedgerRepositoryScoped(testDB.DB, testGuildID).GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ledger.MessageCount)
}

func TestUnitOfWork_RollbackDiscardsEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	publisher := new(mockTransactionalPublisher)
	publisher.On("Discard").Return()

	uow := CreateTestUnitOfWork(testDB.DB, testGuildID, publisher)
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.MemberLedgerRepository().ApplyDelta(ctx, 1, entities.CurrencyDelta(500))
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	publisher.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Flush", mock.Anything)

	ledger, err := NewMemberLedgerRepositoryScoped(testDB.DB, testGuildID).GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, ledger.GamblingPoints)

	// Rollback after rollback is a no-op
	assert.NoError(t, uow.Rollback())
}

func TestUnitOfWork_GettersRequireBegin(t *testing.T) {
	uow := NewUnitOfWorkFactory(nil).CreateForGuildWithPublisher(testGuildID, nil)

	assert.Panics(t, func() { uow.MemberLedgerRepository() })
	assert.Panics(t, func() { uow.ActiveBanRepository() })
	assert.Panics(t, func() { uow.EventBus() })
}
