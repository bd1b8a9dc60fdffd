package application_test

import (
	"context"
	"testing"
	"time"

	"guildkeeper/application"
	"guildkeeper/domain/entities"
	"guildkeeper/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceScanJob_AwardsQualifyingMembers(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()

	presence := &fakePresence{
		channels: map[int64][]*entities.VoiceChannelPresence{
			testGuildID: {
				{ChannelID: 1, Members: []entities.VoiceMember{
					{MemberID: 10},
					{MemberID: 11},
					{MemberID: 12, SelfMute: true},
					{MemberID: 13, Bot: true},
				}},
				// Alone in a channel earns nothing
				{ChannelID: 2, Members: []entities.VoiceMember{{MemberID: 20}}},
				// A music bot keeps its listener company
				{ChannelID: 3, Members: []entities.VoiceMember{
					{MemberID: 30},
					{MemberID: 31, Bot: true},
				}},
			},
		},
		failFor: map[int64]bool{otherTestGuildID: true},
	}

	job := application.NewVoiceScanJob(factory, fakeDiscovery{otherTestGuildID, testGuildID}, presence, 10*time.Minute)
	err := job.Run(ctx)
	// The failing guild is reported but does not stop the healthy one
	require.Error(t, err)

	for _, memberID := range []int64{10, 11, 30} {
		ledger := loadLedger(t, testDB.DB, testGuildID, memberID)
		assert.Equal(t, int64(entities.VoiceActivityPoints), ledger.ActivityPoints)
		assert.Equal(t, int64(entities.VoiceActivityPoints), ledger.MonthlyActivityPoints)
		assert.Equal(t, int64(entities.VoiceCurrencyPoints), ledger.GamblingPoints)
	}
	for _, memberID := range []int64{12, 13, 20, 31} {
		assert.Zero(t, loadLedger(t, testDB.DB, testGuildID, memberID).ActivityPoints)
	}
}

func TestMonthlyResetJob_RunsOncePerMonth(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()

	ledgers := repository.NewMemberLedgerRepositoryScoped(testDB.DB, testGuildID)
	_, err := ledgers.ApplyDelta(ctx, testMemberID, entities.LedgerDelta{Activity: 50, Monthly: 50})
	require.NoError(t, err)

	now := time.Date(2026, time.October, 31, 12, 0, 0, 0, time.UTC)
	job := application.NewMonthlyResetJob(factory, fakeDiscovery{}, 24*time.Hour).WithClock(func() time.Time { return now })

	// Not the first of the month
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, int64(50), loadLedger(t, testDB.DB, testGuildID, testMemberID).MonthlyActivityPoints)

	now = time.Date(2026, time.November, 1, 0, 5, 0, 0, time.UTC)
	require.NoError(t, job.Run(ctx))
	ledger := loadLedger(t, testDB.DB, testGuildID, testMemberID)
	assert.Zero(t, ledger.MonthlyActivityPoints)
	assert.Equal(t, int64(50), ledger.ActivityPoints)

	// Activity later the same day survives further ticks and a restarted job
	_, err = ledgers.ApplyDelta(ctx, testMemberID, entities.LedgerDelta{Activity: 5, Monthly: 5})
	require.NoError(t, err)

	now = time.Date(2026, time.November, 1, 23, 0, 0, 0, time.UTC)
	require.NoError(t, job.Run(ctx))
	restarted := application.NewMonthlyResetJob(factory, fakeDiscovery{testGuildID}, 24*time.Hour).WithClock(func() time.Time { return now })
	require.NoError(t, restarted.Run(ctx))

	assert.Equal(t, int64(5), loadLedger(t, testDB.DB, testGuildID, testMemberID).MonthlyActivityPoints)
}

func TestVoiceReconciler_RestartRebuildsSessions(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()

	voice := repository.NewVoiceSessionRepositoryScoped(testDB.DB, testGuildID)
	stale := time.Now().UTC().Add(-6 * time.Hour)
	_, err := voice.StartSession(ctx, 1, stale)
	require.NoError(t, err)
	_, err = voice.StartSession(ctx, 2, stale)
	require.NoError(t, err)

	presence := &fakePresence{channels: map[int64][]*entities.VoiceChannelPresence{
		testGuildID: {{ChannelID: 7, Members: []entities.VoiceMember{
			{MemberID: 2, SelfMute: true},
			{MemberID: 3},
			{MemberID: 4, Bot: true},
		}}},
	}}
	reconciler := application.NewVoiceReconciler(factory, presence)

	require.NoError(t, reconciler.HandleReady(ctx, []int64{testGuildID}))
	opened, err := reconciler.ResyncGuild(ctx, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, 2, opened)

	gone, err := voice.GetActive(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)

	for _, memberID := range []int64{2, 3} {
		session, err := voice.GetActive(ctx, memberID)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.True(t, session.StartedAt.After(stale))
	}

	bot, err := voice.GetActive(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, bot)

	// A second ready does not wipe sessions opened since the restart
	require.NoError(t, reconciler.HandleReady(ctx, []int64{testGuildID}))
	kept, err := voice.GetActive(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestVoiceReconciler_LateGuildStartsWhenSeen(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()

	restart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	now := restart
	presence := &fakePresence{channels: map[int64][]*entities.VoiceChannelPresence{
		testGuildID:      {{ChannelID: 7, Members: []entities.VoiceMember{{MemberID: 1}}}},
		otherTestGuildID: {{ChannelID: 8, Members: []entities.VoiceMember{{MemberID: 2}}}},
	}}
	reconciler := application.NewVoiceReconciler(factory, presence).WithClock(func() time.Time { return now })

	require.NoError(t, reconciler.HandleReady(ctx, []int64{testGuildID}))

	// The startup guild is resynced a little after ready
	now = restart.Add(2 * time.Second)
	_, err := reconciler.ResyncGuild(ctx, testGuildID)
	require.NoError(t, err)

	// The bot joins another guild three days later
	now = restart.Add(72 * time.Hour)
	_, err = reconciler.ResyncGuild(ctx, otherTestGuildID)
	require.NoError(t, err)

	startup, err := repository.NewVoiceSessionRepositoryScoped(testDB.DB, testGuildID).GetActive(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, startup)
	assert.True(t, startup.StartedAt.Equal(restart), "got %s", startup.StartedAt)

	late, err := repository.NewVoiceSessionRepositoryScoped(testDB.DB, otherTestGuildID).GetActive(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, late)
	assert.True(t, late.StartedAt.Equal(now), "got %s", late.StartedAt)

	// After a re-identify, newcomers in the startup guild start at resync time too
	presence.channels[testGuildID][0].Members = append(presence.channels[testGuildID][0].Members, entities.VoiceMember{MemberID: 3})
	now = restart.Add(96 * time.Hour)
	require.NoError(t, reconciler.HandleReady(ctx, []int64{testGuildID, otherTestGuildID}))
	_, err = reconciler.ResyncGuild(ctx, testGuildID)
	require.NoError(t, err)

	newcomer, err := repository.NewVoiceSessionRepositoryScoped(testDB.DB, testGuildID).GetActive(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, newcomer)
	assert.True(t, newcomer.StartedAt.Equal(now), "got %s", newcomer.StartedAt)
}

func TestActivityRecorder_MessageAndVoice(t *testing.T) {
	t.Parallel()
	testDB, factory := setupTestFactory(t)
	ctx := context.Background()
	recorder := application.NewActivityRecorder(factory)

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_, err := recorder.RecordMessage(ctx, testGuildID, testMemberID, now)
		require.NoError(t, err)
	}
	ledger := loadLedger(t, testDB.DB, testGuildID, testMemberID)
	assert.Equal(t, int64(5), ledger.ActivityPoints)
	assert.Equal(t, int64(5), ledger.MonthlyActivityPoints)
	assert.Equal(t, int64(10), ledger.GamblingPoints)
	assert.Equal(t, int64(5), ledger.MessageCount)

	transition, err := recorder.HandleVoiceStateChange(ctx, testGuildID, testMemberID, "", "111", now.Add(-90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, entities.VoiceJoined, transition)

	transition, err = recorder.HandleVoiceStateChange(ctx, testGuildID, testMemberID, "111", "222", now.Add(-30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, entities.VoiceMoved, transition)

	transition, err = recorder.HandleVoiceStateChange(ctx, testGuildID, testMemberID, "222", "", now)
	require.NoError(t, err)
	assert.Equal(t, entities.VoiceLeft, transition)

	assert.Equal(t, int64(90), loadLedger(t, testDB.DB, testGuildID, testMemberID).VoiceSeconds)

	// A repeated leave finds no session and changes nothing
	_, err = recorder.HandleVoiceStateChange(ctx, testGuildID, testMemberID, "222", "", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(90), loadLedger(t, testDB.DB, testGuildID, testMemberID).VoiceSeconds)
}
