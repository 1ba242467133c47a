package lightconfig

import "time"

// Defaults applied to every field omitted from an upsert.
const (
	DefaultColor         = "#00FFAA"
	DefaultJoinEffect    = "wakeup"
	DefaultJoinDuration  = 6000
	DefaultNextEffect    = "breathe"
	DefaultSpeed         = "medium"
	DefaultBrightness    = 255
	DefaultLeaveEffect   = "sleep"
	DefaultLeaveDuration = 4000
)

// MaxBrightness is the upper bound for Brightness.
const MaxBrightness = 255

// UserLightConfig is the lighting configuration of one tracked user.
//
// Values returned by a Store are copies; mutating them has no effect on
// the stored row.
type UserLightConfig struct {
	// UserID is the chat platform user identity. Primary key.
	UserID string

	// Username is a display label only.
	Username string

	// Device identifies the target controller. Commands go to
	// "<prefix>/<Device>/control".
	Device string

	// LED is the zero-based index into the controller's LED array.
	LED int

	// Color is a hex RGB string such as "#00FFAA".
	Color string

	// JoinEffect is wakeup, pulse, breathe, solid or any other name (static set).
	JoinEffect string

	// JoinDuration in milliseconds; only used by wakeup.
	JoinDuration int

	// NextEffect is chained after wakeup completes.
	NextEffect string

	// Speed is slow, medium or fast; only used by pulse and breathe.
	Speed string

	// Brightness 0-255; only used by solid.
	Brightness int

	// LeaveEffect is sleep or any other name (hard off).
	LeaveEffect string

	// LeaveDuration in milliseconds; only used by sleep.
	LeaveDuration int

	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields holds the configurable values of an upsert.
//
// Device and LED are required. A nil pointer means "not supplied" and the
// field takes its documented default, on insert and on update alike: an
// upsert replaces the whole configuration, it does not merge.
type Fields struct {
	Device        string
	LED           *int
	Color         *string
	JoinEffect    *string
	JoinDuration  *int
	NextEffect    *string
	Speed         *string
	Brightness    *int
	LeaveEffect   *string
	LeaveDuration *int
}

// Int returns a pointer to v, for populating Fields.
func Int(v int) *int { return &v }

// String returns a pointer to v, for populating Fields.
func String(v string) *string { return &v }

// resolve validates f and returns the full configuration it describes.
// Enabled and the timestamps are left for the store to manage.
func (f Fields) resolve(userID, username string) (UserLightConfig, error) {
	if err := f.validate(userID); err != nil {
		return UserLightConfig{}, err
	}

	return UserLightConfig{
		UserID:        userID,
		Username:      username,
		Device:        f.Device,
		LED:           *f.LED,
		Color:         stringOr(f.Color, DefaultColor),
		JoinEffect:    stringOr(f.JoinEffect, DefaultJoinEffect),
		JoinDuration:  intOr(f.JoinDuration, DefaultJoinDuration),
		NextEffect:    stringOr(f.NextEffect, DefaultNextEffect),
		Speed:         stringOr(f.Speed, DefaultSpeed),
		Brightness:    intOr(f.Brightness, DefaultBrightness),
		LeaveEffect:   stringOr(f.LeaveEffect, DefaultLeaveEffect),
		LeaveDuration: intOr(f.LeaveDuration, DefaultLeaveDuration),
	}, nil
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
