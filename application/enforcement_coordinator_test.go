package application_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"guildkeeper/application"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
	"guildkeeper/repository"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcementCoordinator_WarnKicksAtLimit(t *testing.T) {
	t.Parallel()
	_, factory := setupTestFactory(t)
	ctx := context.Background()
	actuator := &fakeActuator{}
	coordinator := application.NewEnforcementCoordinator(factory, actuator)

	for i := 1; i <= 2; i++ {
		result, err := coordinator.Warn(ctx, testGuildID, testMemberID, testModeratorID, fmt.Sprintf("spam %d", i))
		require.NoError(t, err)
		assert.Equal(t, i, result.Count)
		assert.False(t, result.LimitReached())
	}
	assert.Empty(t, actuator.kicked)

	result, err := coordinator.Warn(ctx, testGuildID, testMemberID, testModeratorID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.True(t, result.LimitReached())
	assert.True(t, result.Applied)
	assert.NoError(t, result.EnforcementErr)
	assert.Equal(t, entities.DefaultWarningReason, result.Warning.Reason)

	assert.Equal(t, []int64{testMemberID}, actuator.kicked)
	// The notice is attempted even though delivery fails
	assert.Equal(t, []int64{testMemberID}, actuator.notified)
}

func TestEnforcementCoordinator_ConcurrentWarnsSeeDistinctCounts(t *testing.T) {
	t.Parallel()
	_, factory := setupTestFactory(t)
	ctx := context.Background()
	actuator := &fakeActuator{}
	coordinator := application.NewEnforcementCoordinator(factory, actuator)

	const calls = 6
	counts := make(chan int, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := coordinator.Warn(ctx, testGuildID, testMemberID, testModeratorID, fmt.Sprintf("flood %d", i))
			assert.NoError(t, err)
			if result != nil {
				counts <- result.Count
			}
		}(i)
	}
	wg.Wait()
	close(counts)

	var seen []int
	for count := range counts {
		seen = append(seen, count)
	}
	sort.Ints(seen)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, seen)

	// Only the calls at or past the default limit of 3 kick, once each
	assert.Len(t, actuator.kicked, calls-2)
}

func TestEnforcementCoordinator_WarnBansAndRecordsExpiry(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()

	settingsRepo := repository.NewGuildSettingsRepository(testDB.DB)
	settings, err := settingsRepo.GetOrCreateGuildSettings(ctx, testGuildID)
	require.NoError(t, err)
	settings.WarnLimit = 1
	settings.WarnAction = entities.EnforcementBan
	settings.BanDurationDays = 2
	require.NoError(t, settingsRepo.UpdateGuildSettings(ctx, settings))

	actuator := &fakeActuator{}
	coordinator := application.NewEnforcementCoordinator(factory, actuator)

	before := time.Now().UTC()
	result, err := coordinator.Warn(ctx, testGuildID, testMemberID, testModeratorID, "raid")
	require.NoError(t, err)
	require.True(t, result.Applied)
	assert.Equal(t, []int64{testMemberID}, actuator.banned)

	ban, err := repository.NewActiveBanRepositoryScoped(testDB.DB, testGuildID).GetByMember(ctx, testMemberID)
	require.NoError(t, err)
	require.NotNil(t, ban)
	assert.WithinDuration(t, before.Add(48*time.Hour), ban.UnbanAt, time.Minute)
	assert.Equal(t, "Reached warning limit of 1.", ban.Reason)
}

func TestEnforcementCoordinator_WarnKeepsWarningWhenActionFails(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()

	settingsRepo := repository.NewGuildSettingsRepository(testDB.DB)
	settings, err := settingsRepo.GetOrCreateGuildSettings(ctx, testGuildID)
	require.NoError(t, err)
	settings.WarnLimit = 1
	settings.WarnAction = entities.EnforcementBan
	require.NoError(t, settingsRepo.UpdateGuildSettings(ctx, settings))

	actuator := &fakeActuator{actionErr: interfaces.ErrActuatorForbidden}
	coordinator := application.NewEnforcementCoordinator(factory, actuator)

	result, err := coordinator.Warn(ctx, testGuildID, testMemberID, testModeratorID, "raid")
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.ErrorIs(t, result.EnforcementErr, interfaces.ErrActuatorForbidden)

	count, err := repository.NewWarningRepositoryScoped(testDB.DB, testGuildID).CountByMember(ctx, testMemberID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ban, err := repository.NewActiveBanRepositoryScoped(testDB.DB, testGuildID).GetByMember(ctx, testMemberID)
	require.NoError(t, err)
	assert.Nil(t, ban)
}

func TestEnforcementCoordinator_WarnRejectsSelf(t *testing.T) {
	t.Parallel()
	_, factory := setupTestFactory(t)
	coordinator := application.NewEnforcementCoordinator(factory, &fakeActuator{})

	_, err := coordinator.Warn(context.Background(), testGuildID, testModeratorID, testModeratorID, "me")
	assert.ErrorIs(t, err, interfaces.ErrSelfWarn)
}

func TestEnforcementCoordinator_SweepExpiredBans(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()

	guildBans := repository.NewActiveBanRepositoryScoped(testDB.DB, testGuildID)
	otherBans := repository.NewActiveBanRepositoryScoped(testDB.DB, otherTestGuildID)
	require.NoError(t, guildBans.Upsert(ctx, testutil.CreateTestActiveBan(1, -time.Hour)))
	require.NoError(t, guildBans.Upsert(ctx, testutil.CreateTestActiveBan(2, -time.Minute)))
	require.NoError(t, otherBans.Upsert(ctx, testutil.CreateTestActiveBan(3, -time.Minute)))
	require.NoError(t, guildBans.Upsert(ctx, testutil.CreateTestActiveBan(4, time.Hour)))

	actuator := &fakeActuator{unbanErrs: map[int64]error{
		2: fmt.Errorf("unban: %w", interfaces.ErrTargetNotFound),
		3: errors.New("gateway timeout"),
	}}
	coordinator := application.NewEnforcementCoordinator(factory, actuator)

	report, err := coordinator.SweepExpiredBans(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Expired)
	assert.Equal(t, 2, report.Lifted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []int64{1}, actuator.unbanned)

	lifted, err := guildBans.GetByMember(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, lifted)

	alreadyGone, err := guildBans.GetByMember(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, alreadyGone)

	retried, err := otherBans.GetByMember(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, retried, "failed unban must stay for the next sweep")

	pending, err := guildBans.GetByMember(ctx, 4)
	require.NoError(t, err)
	assert.NotNil(t, pending)

	// Once the platform recovers the next sweep clears the rest
	actuator.unbanErrs = nil
	report, err = coordinator.SweepExpiredBans(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, 1, report.Lifted)
}
