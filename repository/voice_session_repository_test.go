package repository

import (
	"context"
	"testing"
	"time"

	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceSessionRepository_StartAndEnd(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewVoiceSessionRepositoryScoped(testDB.DB, testGuildID)
	ctx := context.Background()

	started := time.Now().UTC().Add(-10 * time.Minute).Truncate(time.Second)

	created, err := repo.StartSession(ctx, 1, started)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.StartSession(ctx, 1, started.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, created, "second join keeps the first session")

	active, err := repo.GetActive(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, active.StartedAt.Equal(started))

	ended := started.Add(10 * time.Minute)
	session, err := repo.EndSession(ctx, 1, ended)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, int64(600), session.DurationSeconds)

	// A redelivered leave finds nothing
	duplicate, err := repo.EndSession(ctx, 1, ended.Add(time.Second))
	require.NoError(t, err)
	assert.Nil(t, duplicate)

	var history int
	err = testDB.DB.QueryRow(ctx, `SELECT COUNT(*) FROM voice_sessions WHERE guild_id = $1 AND member_id = 1`, testGuildID).Scan(&history)
	require.NoError(t, err)
	assert.Equal(t, 1, history)

	active, err = repo.GetActive(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestVoiceSessionRepository_ClearAndResync(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewVoiceSessionRepositoryScoped(testDB.DB, testGuildID)
	other := NewVoiceSessionRepositoryScoped(testDB.DB, otherTestGuildID)
	ctx := context.Background()

	stale := time.Now().UTC().Add(-3 * time.Hour).Truncate(time.Second)
	_, err := repo.StartSession(ctx, 1, stale)
	require.NoError(t, err)
	_, err = other.StartSession(ctx, 2, stale)
	require.NoError(t, err)

	cleared, err := repo.ClearAllActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	restart := time.Now().UTC().Truncate(time.Second)
	created, err := repo.StartSession(ctx, 1, restart)
	require.NoError(t, err)
	assert.True(t, created)

	active, err := repo.GetActive(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, active.StartedAt.Equal(restart))

	var count int
	err = testDB.DB.QueryRow(ctx, `SELECT COUNT(*) FROM active_voice_sessions`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
