package moderation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"guildkeeper/application"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warnResult(count, limit int, decision *entities.EnforcementDecision) *application.WarnResult {
	return &application.WarnResult{
		WarnOutcome: &entities.WarnOutcome{
			Warning:     &entities.Warning{ID: 9, Reason: "spam"},
			Count:       count,
			Limit:       limit,
			Enforcement: decision,
		},
	}
}

func TestWarnMessage(t *testing.T) {
	t.Run("below limit", func(t *testing.T) {
		msg := warnMessage(42, warnResult(1, 3, nil))
		assert.Equal(t, "⚠️ <@42> has been warned (1/3).\nReason: spam", msg)
	})

	t.Run("kicked", func(t *testing.T) {
		result := warnResult(3, 3, &entities.EnforcementDecision{Action: entities.EnforcementKick})
		result.Applied = true

		assert.Contains(t, warnMessage(42, result), "They have been kicked.")
	})

	t.Run("banned until", func(t *testing.T) {
		unbanAt := time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC)
		result := warnResult(3, 3, &entities.EnforcementDecision{Action: entities.EnforcementBan, UnbanAt: &unbanAt})
		result.Applied = true

		assert.Contains(t, warnMessage(42, result), "banned until <t:1780876800:f>")
	})

	t.Run("enforcement failed", func(t *testing.T) {
		result := warnResult(3, 3, &entities.EnforcementDecision{Action: entities.EnforcementKick})
		result.EnforcementErr = errors.Join(interfaces.ErrActuatorForbidden, errors.New("HTTP 403"))

		msg := warnMessage(42, result)
		assert.Contains(t, msg, "has been warned (3/3)")
		assert.Contains(t, msg, "the kick failed: I do not have permission")
	})
}

func TestNormalizeReason(t *testing.T) {
	assert.Equal(t, entities.DefaultWarningReason, normalizeReason("   "))
	assert.Equal(t, "flooding", normalizeReason(" flooding "))
	assert.Len(t, []rune(normalizeReason(strings.Repeat("ż", maxReasonLength+10))), maxReasonLength)
}

func TestWarningEmbeds(t *testing.T) {
	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	list := warningListEmbed("alice", []*entities.Warning{
		{ID: 3, ModeratorID: 99, Reason: "spam", CreatedAt: created},
	})
	require.Len(t, list.Fields, 1)
	assert.Equal(t, "#3 · <t:1767312000:d>", list.Fields[0].Name)
	assert.Equal(t, "spam\nModerator: <@99>", list.Fields[0].Value)
	assert.Equal(t, "1 warning(s)", list.Footer.Text)

	assert.Equal(t, "No warnings on record.", warningListEmbed("bob", nil).Description)

	summary := warningSummaryEmbed([]*entities.WarningCount{{MemberID: 1, Count: 3}, {MemberID: 2, Count: 1}})
	assert.Equal(t, "<@1>: 3\n<@2>: 1", summary.Description)
}
