package presence

import "fmt"

// Kind classifies a voice-channel transition.
type Kind int

const (
	// Ignored covers no channel change (mute, deafen, stream) and events with
	// neither channel set.
	Ignored Kind = iota
	Join
	Leave
	Move
)

func (k Kind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case Join:
		return "join"
	case Leave:
		return "leave"
	case Move:
		return "move"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transition is one observed change in a user's voice-channel membership.
// An empty channel id means "not in a voice channel".
type Transition struct {
	UserID          string
	Username        string
	PreviousChannel string
	CurrentChannel  string

	// ChannelName is the human-readable name of the channel involved, used
	// only for logging. It may be empty.
	ChannelName string
}

// Classify derives the transition kind from the previous and current channel ids.
func Classify(previous, current string) Kind {
	switch {
	case previous == "" && current != "":
		return Join
	case previous != "" && current == "":
		return Leave
	case previous != "" && current != "" && previous != current:
		return Move
	default:
		return Ignored
	}
}

// Kind classifies t.
func (t Transition) Kind() Kind {
	return Classify(t.PreviousChannel, t.CurrentChannel)
}

// channel returns the best label for the channel involved in t.
func (t Transition) channel() string {
	if t.ChannelName != "" {
		return t.ChannelName
	}
	if t.CurrentChannel != "" {
		return t.CurrentChannel
	}
	return t.PreviousChannel
}

// label names the user in publish outcome logs.
func (t Transition) label() string {
	if t.Username != "" {
		return t.Username
	}
	return t.UserID
}
