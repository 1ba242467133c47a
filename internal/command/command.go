package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledcord/voicelight/internal/lightconfig"
)

// Kind selects which side of the configuration Build reads.
type Kind int

const (
	Join Kind = iota + 1
	Leave
)

func (k Kind) String() string {
	switch k {
	case Join:
		return "join"
	case Leave:
		return "leave"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrUnsupportedKind is returned by Build for anything but Join or Leave.
var ErrUnsupportedKind = errors.New("command: unsupported transition kind")

// Command is a controller payload. It is either *EffectCommand or
// *StaticCommand.
type Command interface {
	// Label names the command in logs: the effect name, or "static".
	Label() string

	command()
}

// EffectCommand asks the controller to run a named animation on one LED.
type EffectCommand struct {
	Effect   string `json:"effect"`
	LED      int    `json:"led"`
	Color    string `json:"color,omitempty"`
	Duration *int   `json:"duration,omitempty"`
	Next     string `json:"next,omitempty"`
	Speed    string `json:"speed,omitempty"`
}

// Label implements Command.
func (c *EffectCommand) Label() string { return c.Effect }

func (*EffectCommand) command() {}

// StaticCommand sets LEDs directly with no animation.
type StaticCommand struct {
	LEDs []LEDState `json:"leds"`
}

// LEDState is one entry of a StaticCommand.
type LEDState struct {
	Index      int    `json:"index"`
	Color      string `json:"color"`
	Brightness *int   `json:"brightness,omitempty"`
}

// Label implements Command.
func (*StaticCommand) Label() string { return "static" }

func (*StaticCommand) command() {}

// Build maps a configuration and a transition kind to a command.
//
// cfg is taken by value; Build never retains or mutates it.
func Build(cfg lightconfig.UserLightConfig, kind Kind) (Command, error) {
	switch kind {
	case Join:
		return buildJoin(cfg), nil
	case Leave:
		return buildLeave(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

func buildJoin(cfg lightconfig.UserLightConfig) Command {
	switch ParseJoinEffect(cfg.JoinEffect) {
	case JoinWakeup:
		duration := cfg.JoinDuration
		return &EffectCommand{
			Effect:   "wakeup",
			LED:      cfg.LED,
			Color:    cfg.Color,
			Duration: &duration,
			Next:     cfg.NextEffect,
		}
	case JoinPulse, JoinBreathe:
		return &EffectCommand{
			Effect: cfg.JoinEffect,
			LED:    cfg.LED,
			Color:  cfg.Color,
			Speed:  cfg.Speed,
		}
	case JoinSolid:
		brightness := cfg.Brightness
		return &StaticCommand{LEDs: []LEDState{{
			Index:      cfg.LED,
			Color:      cfg.Color,
			Brightness: &brightness,
		}}}
	default:
		return &StaticCommand{LEDs: []LEDState{{
			Index: cfg.LED,
			Color: cfg.Color,
		}}}
	}
}

func buildLeave(cfg lightconfig.UserLightConfig) Command {
	switch ParseLeaveEffect(cfg.LeaveEffect) {
	case LeaveSleep:
		duration := cfg.LeaveDuration
		return &EffectCommand{
			Effect:   "sleep",
			LED:      cfg.LED,
			Duration: &duration,
		}
	default:
		return &StaticCommand{LEDs: []LEDState{{
			Index: cfg.LED,
			Color: OffColor,
		}}}
	}
}

// Encode returns the wire form of cmd: compact UTF-8 JSON with a fixed key order.
func Encode(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, errors.New("command: nil command")
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("command: encoding %s: %w", cmd.Label(), err)
	}
	return data, nil
}
