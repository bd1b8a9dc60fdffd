package repository

import (
	"context"
	"testing"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildSettingsRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGuildSettingsRepository(testDB.DB)
	ctx := context.Background()

	settings, err := repo.GetOrCreateGuildSettings(ctx, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, entities.NewDefaultGuildSettings(testGuildID), settings)

	channelID := int64(4242)
	require.NoError(t, settings.SetWarnAction(entities.EnforcementBan))
	require.NoError(t, settings.SetBanDurationDays(14))
	settings.SetAuditLogChannel(&channelID)
	require.NoError(t, repo.UpdateGuildSettings(ctx, settings))

	reloaded, err := repo.GetOrCreateGuildSettings(ctx, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, entities.EnforcementBan, reloaded.WarnAction)
	assert.Equal(t, 14, reloaded.BanDurationDays)
	require.NotNil(t, reloaded.AuditLogChannelID)
	assert.Equal(t, channelID, *reloaded.AuditLogChannelID)

	err = repo.UpdateGuildSettings(ctx, entities.NewDefaultGuildSettings(123))
	assert.Error(t, err)
}

func TestMonthlyResetRepository_TryMarkPeriod(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewMonthlyResetRepositoryScoped(testDB.DB, testGuildID)
	other := NewMonthlyResetRepositoryScoped(testDB.DB, otherTestGuildID)
	ctx := context.Background()
	now := time.Now()

	marked, err := repo.TryMarkPeriod(ctx, "2026-03", now)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = repo.TryMarkPeriod(ctx, "2026-03", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, marked)

	marked, err = other.TryMarkPeriod(ctx, "2026-03", now)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = repo.TryMarkPeriod(ctx, "2026-04", now)
	require.NoError(t, err)
	assert.True(t, marked)
}
