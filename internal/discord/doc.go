// Package discord connects the bridge to the Discord gateway.
//
// The Listener subscribes to guild voice-state updates, converts each one to a
// presence.Transition and feeds them to a single consumer goroutine (Run), so
// transitions are handled one at a time in arrival order. When the session
// becomes ready it logs the bot identity and the enabled lighting roster.
//
// Only the Guilds and GuildVoiceStates intents are requested.
package discord
