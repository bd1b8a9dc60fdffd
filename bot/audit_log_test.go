package bot

import (
	"strings"
	"testing"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceEntries(t *testing.T) {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	joined := voiceJoinedEntry(42, "General", at)
	assert.Equal(t, "**<@42> joined voice channel `General`**", joined.Description)

	left := voiceLeftEntry(42, "General", at)
	assert.Equal(t, "**<@42> left voice channel `General`**", left.Description)

	moved := voiceMovedEntry(42, "General", "Gaming", at)
	assert.Equal(t, "**<@42> moved from `General` to `Gaming`**", moved.Description)
}

func TestMemberEntries(t *testing.T) {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	joined := memberJoinedEntry(7, at)
	assert.Equal(t, "**<@7> has joined the server.**", joined.Description)
	assert.Equal(t, common.ColorSuccess, joined.Color)

	left := memberLeftEntry(7, at)
	assert.Equal(t, "**<@7> has left the server.**", left.Description)
	assert.Equal(t, "User Left", left.Footer)
}

func TestEnforcementEntries(t *testing.T) {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	unbanAt := at.Add(7 * 24 * time.Hour)

	ban := enforcementAppliedEntry(events.EnforcementAppliedEvent{
		GuildID:  1,
		MemberID: 42,
		Action:   entities.EnforcementBan,
		Reason:   "Reached 3 warnings",
		UnbanAt:  &unbanAt,
	}, at)
	assert.Contains(t, ban.Description, "was banned")
	assert.Contains(t, ban.Description, common.FormatDiscordTimestamp(unbanAt, "f"))
	assert.Contains(t, ban.Description, "Reason: Reached 3 warnings")

	kick := enforcementAppliedEntry(events.EnforcementAppliedEvent{
		GuildID:  1,
		MemberID: 42,
		Action:   entities.EnforcementKick,
	}, at)
	assert.Contains(t, kick.Description, "was kicked")
	assert.NotContains(t, kick.Description, "Reason")

	lifted := enforcementReversedEntry(events.EnforcementReversedEvent{
		GuildID:  1,
		MemberID: 42,
		Outcome:  entities.BanLiftAlreadyLifted,
	}, at)
	assert.Contains(t, lifted.Description, "already been removed")
}

func TestAuditEntryEmbed(t *testing.T) {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.FixedZone("CET", 3600))

	embed := auditEntry{
		Description: "line",
		Color:       common.ColorInfo,
		Footer:      "Footer",
		SubjectID:   42,
		SubjectName: "alice",
		At:          at,
	}.embed()

	assert.Equal(t, "line", embed.Description)
	assert.Equal(t, "2026-03-14T19:00:00Z", embed.Timestamp)
	require.NotNil(t, embed.Author)
	assert.Equal(t, "alice (42)", embed.Author.Name)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Footer", embed.Footer.Text)

	bare := auditEntry{Description: "line", At: at}.embed()
	assert.Nil(t, bare.Author)
	assert.Nil(t, bare.Footer)
}

func TestDeletedMessageEntry(t *testing.T) {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	guildID, entry, ok := deletedMessageEntry(&discordgo.Message{
		GuildID:   "10",
		ChannelID: "500",
		Content:   "  hello there ",
		Author:    &discordgo.User{ID: "42", Username: "alice"},
	}, at)
	require.True(t, ok)
	assert.Equal(t, int64(10), guildID)
	assert.Equal(t, "**Message sent by <@42> deleted in <#500>**\nhello there", entry.Description)
	assert.Equal(t, "Message Deleted", entry.Footer)
	assert.Equal(t, "alice", entry.SubjectName)

	_, _, ok = deletedMessageEntry(nil, at)
	assert.False(t, ok, "uncached messages are not logged")

	_, _, ok = deletedMessageEntry(&discordgo.Message{
		GuildID:   "10",
		ChannelID: "500",
		Author:    &discordgo.User{ID: "43", Bot: true},
	}, at)
	assert.False(t, ok, "bot messages are not logged")

	_, _, ok = deletedMessageEntry(&discordgo.Message{
		ChannelID: "500",
		Author:    &discordgo.User{ID: "42"},
	}, at)
	assert.False(t, ok, "direct messages are not logged")
}

func TestMessageDeletedEntry_ContentBounds(t *testing.T) {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	empty := messageDeletedEntry(42, 500, "", at)
	assert.True(t, strings.HasSuffix(empty.Description, "*No text content*"))

	long := messageDeletedEntry(42, 500, strings.Repeat("ż", maxDeletedContentRunes+10), at)
	assert.True(t, strings.HasSuffix(long.Description, "…"))
	assert.Less(t, len([]rune(long.Description)), maxDeletedContentRunes+64)
}

func TestDiffRoles(t *testing.T) {
	added, removed := diffRoles([]string{"1", "2", "3"}, []string{"3", "4", "1", "5"})
	assert.Equal(t, []string{"4", "5"}, added)
	assert.Equal(t, []string{"2"}, removed)

	added, removed = diffRoles([]string{"1"}, []string{"1"})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestRoleChangeEntries(t *testing.T) {
	session := newStateSession(t, &discordgo.Guild{
		ID: "10",
		Roles: []*discordgo.Role{
			{ID: "100", Name: "VIP"},
			{ID: "200", Name: "Muted"},
		},
	})
	audit := NewAuditLog(session, nil)
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	before := &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice"}, Roles: []string{"200"}}
	after := &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice"}, Roles: []string{"100", "300"}}

	entries := audit.roleChangeEntries("10", before, after, at)
	require.Len(t, entries, 3)
	assert.Equal(t, "**<@42> was given the `VIP` role.**", entries[0].Description)
	// Unknown roles fall back to their id
	assert.Equal(t, "**<@42> was given the `300` role.**", entries[1].Description)
	assert.Equal(t, "**`Muted` role was removed from <@42>.**", entries[2].Description)
	for _, entry := range entries {
		assert.Equal(t, "Roles Updated", entry.Footer)
		assert.Equal(t, "alice", entry.SubjectName)
	}

	// Nickname changes and uncached members produce nothing
	assert.Empty(t, audit.roleChangeEntries("10", after, after, at))
	assert.Empty(t, audit.roleChangeEntries("10", nil, after, at))
}
