package economy

import (
	"testing"
	"time"

	"guildkeeper/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetMessage(t *testing.T) {
	won := betMessage("<@1>", &entities.BetResult{Amount: 1500, Roll: 12, WinChance: 45, Won: true, NewBalance: 3000}, "Punkty")
	assert.Equal(t, "🎲 <@1> rolled **12** (needed 45 or less) and won **1,500 Punkty**! New balance: 3,000 Punkty", won)

	lost := betMessage("<@1>", &entities.BetResult{Amount: 10, Roll: 46, WinChance: 45, NewBalance: 0}, "coins")
	assert.Equal(t, "🎲 <@1> rolled **46** (needed 45 or less) and lost **10 coins**. New balance: 0 coins", lost)
}

func TestWalletEmbed(t *testing.T) {
	lastActive := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ledger := &entities.MemberLedger{
		ActivityPoints:        4200,
		MonthlyActivityPoints: 310,
		GamblingPoints:        8400,
		MessageCount:          1200,
		VoiceSeconds:          3*3600 + 15*60,
		LastActivityAt:        &lastActive,
	}

	embed := walletEmbed("alice", ledger, "Punkty")
	assert.Equal(t, "alice's wallet", embed.Title)
	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "Punkty", embed.Fields[0].Name)
	assert.Equal(t, "8,400", embed.Fields[0].Value)
	assert.Equal(t, "310", embed.Fields[1].Value)
	assert.Equal(t, "3h 15m", embed.Fields[4].Value)
	assert.Equal(t, "<t:1777636800:R>", embed.Fields[5].Value)

	empty := walletEmbed("bob", &entities.MemberLedger{}, "Punkty")
	assert.Equal(t, "never", empty.Fields[5].Value)
}
