package command

// JoinEffect is the closed set of join-side effects with dedicated payloads.
// Any other configured name maps to JoinStatic.
type JoinEffect int

const (
	JoinStatic JoinEffect = iota
	JoinWakeup
	JoinPulse
	JoinBreathe
	JoinSolid
)

// ParseJoinEffect classifies a configured join effect name.
func ParseJoinEffect(name string) JoinEffect {
	switch name {
	case "wakeup":
		return JoinWakeup
	case "pulse":
		return JoinPulse
	case "breathe":
		return JoinBreathe
	case "solid":
		return JoinSolid
	default:
		return JoinStatic
	}
}

// LeaveEffect is the closed set of leave-side effects.
// Any configured name other than "sleep" maps to LeaveOff.
type LeaveEffect int

const (
	LeaveOff LeaveEffect = iota
	LeaveSleep
)

// ParseLeaveEffect classifies a configured leave effect name.
func ParseLeaveEffect(name string) LeaveEffect {
	if name == "sleep" {
		return LeaveSleep
	}
	return LeaveOff
}

// OffColor is the color sent by the hard-off leave fallback.
const OffColor = "#000000"
