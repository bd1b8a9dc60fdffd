package entities

// VoiceMember is a member's live state inside a voice channel
type VoiceMember struct {
	MemberID int64
	Bot      bool
	SelfMute bool
	SelfDeaf bool
}

// VoiceChannelPresence lists the members found in one voice channel
type VoiceChannelPresence struct {
	ChannelID int64
	Members   []VoiceMember
}

// QualifyingMembers returns the members eligible for a voice award.
// A channel pays out once at least two members are present without self-mute
// or self-deafen. Bots count toward that pair but are never paid themselves.
func (p *VoiceChannelPresence) QualifyingMembers() []int64 {
	active := 0
	var eligible []int64
	for _, m := range p.Members {
		if m.SelfMute || m.SelfDeaf {
			continue
		}
		active++
		if !m.Bot {
			eligible = append(eligible, m.MemberID)
		}
	}
	if active < 2 {
		return nil
	}
	return eligible
}

// HumanMemberIDs returns every non-bot member, regardless of mute state
func (p *VoiceChannelPresence) HumanMemberIDs() []int64 {
	var ids []int64
	for _, m := range p.Members {
		if !m.Bot {
			ids = append(ids, m.MemberID)
		}
	}
	return ids
}
