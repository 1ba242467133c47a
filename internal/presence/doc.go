// Package presence turns voice-channel transitions into lighting commands.
//
// Each transition is classified purely from its previous and current channel
// ids. Joins and leaves of users with an enabled lighting configuration are
// built into a command and handed to the publisher for the user's device.
// Moves are logged and never published. Everything else is ignored.
//
// The Bridge keeps no state between events. Callers deliver transitions one
// at a time; Handle returns as soon as the command is handed off and never
// waits for the broker.
package presence
