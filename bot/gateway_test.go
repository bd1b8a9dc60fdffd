package bot

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"guildkeeper/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restError(status int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Message: http.StatusText(status)},
	}
}

func TestClassifyRESTError(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := classifyRESTError(restError(http.StatusNotFound))
		assert.ErrorIs(t, err, interfaces.ErrTargetNotFound)
	})

	t.Run("forbidden", func(t *testing.T) {
		err := classifyRESTError(restError(http.StatusForbidden))
		assert.ErrorIs(t, err, interfaces.ErrActuatorForbidden)
	})

	t.Run("other status passes through", func(t *testing.T) {
		original := restError(http.StatusInternalServerError)
		err := classifyRESTError(original)
		assert.Same(t, original, err)
		assert.False(t, errors.Is(err, interfaces.ErrTargetNotFound))
	})

	t.Run("non REST error passes through", func(t *testing.T) {
		original := errors.New("websocket closed")
		assert.Same(t, original, classifyRESTError(original))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, classifyRESTError(nil))
	})
}

func newStateSession(t *testing.T, guilds ...*discordgo.Guild) *discordgo.Session {
	t.Helper()
	state := discordgo.NewState()
	for _, g := range guilds {
		require.NoError(t, state.GuildAdd(g))
	}
	return &discordgo.Session{State: state}
}

func TestGateway_VoiceChannels(t *testing.T) {
	session := newStateSession(t, &discordgo.Guild{
		ID: "10",
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "1"}},
			{User: &discordgo.User{ID: "2"}},
			{User: &discordgo.User{ID: "3", Bot: true}},
		},
		VoiceStates: []*discordgo.VoiceState{
			{UserID: "1", ChannelID: "500"},
			{UserID: "2", ChannelID: "500", SelfMute: true},
			{UserID: "3", ChannelID: "500"},
			{UserID: "4", ChannelID: "600"},
		},
	})
	gateway := NewGateway(session)

	channels, err := gateway.VoiceChannels(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, channels, 2)

	first := channels[0]
	assert.Equal(t, int64(500), first.ChannelID)
	require.Len(t, first.Members, 3)
	assert.True(t, first.Members[1].SelfMute)
	assert.True(t, first.Members[2].Bot)
	assert.Equal(t, []int64{1, 2}, first.HumanMemberIDs())
	// The unmuted bot completes the pair for member 1
	assert.Equal(t, []int64{1}, first.QualifyingMembers())

	// Member 4 is not cached and counts as human
	assert.Equal(t, []int64{4}, channels[1].HumanMemberIDs())

	_, err = gateway.VoiceChannels(context.Background(), 99)
	assert.ErrorIs(t, err, interfaces.ErrTargetNotFound)
}

func TestGateway_ConnectedGuildIDs(t *testing.T) {
	session := newStateSession(t,
		&discordgo.Guild{ID: "10"},
		&discordgo.Guild{ID: "20", Unavailable: true},
		&discordgo.Guild{ID: "30"},
	)

	ids, err := NewGateway(session).ConnectedGuildIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 30}, ids)
}
