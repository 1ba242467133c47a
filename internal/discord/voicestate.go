package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/ledcord/voicelight/internal/presence"
)

// TransitionFromVoiceState converts a gateway voice-state update.
//
// The previous channel comes from BeforeUpdate, which discordgo fills from its
// state cache; a user the cache has not seen yet is treated as coming from no
// channel. name resolves a channel id for logging and may be nil.
func TransitionFromVoiceState(v *discordgo.VoiceStateUpdate, name func(channelID string) string) presence.Transition {
	if v == nil || v.VoiceState == nil {
		return presence.Transition{}
	}

	t := presence.Transition{
		UserID:         v.UserID,
		CurrentChannel: v.ChannelID,
	}
	if v.BeforeUpdate != nil {
		t.PreviousChannel = v.BeforeUpdate.ChannelID
	}
	if v.Member != nil && v.Member.User != nil {
		t.Username = v.Member.User.Username
	}

	if name != nil {
		channelID := t.CurrentChannel
		if channelID == "" {
			channelID = t.PreviousChannel
		}
		if channelID != "" {
			t.ChannelName = name(channelID)
		}
	}

	return t
}

// channelNamer looks channel names up in the session state cache.
func channelNamer(s *discordgo.Session) func(string) string {
	return func(channelID string) string {
		if s == nil || s.State == nil {
			return ""
		}
		ch, err := s.State.Channel(channelID)
		if err != nil {
			return ""
		}
		return ch.Name
	}
}
