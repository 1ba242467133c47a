package lightconfig

import (
	"fmt"
	"regexp"
	"strings"
)

// hexColor matches "#RRGGBB".
var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var speeds = map[string]bool{"slow": true, "medium": true, "fast": true}

// validate checks the required fields and ranges of an upsert.
// All problems are reported together.
func (f Fields) validate(userID string) error {
	var problems []string

	if strings.TrimSpace(userID) == "" {
		problems = append(problems, "user id is required")
	}
	if strings.TrimSpace(f.Device) == "" {
		problems = append(problems, "device is required")
	}

	switch {
	case f.LED == nil:
		problems = append(problems, "led is required")
	case *f.LED < 0:
		problems = append(problems, fmt.Sprintf("led must be >= 0, got %d", *f.LED))
	}

	if f.Color != nil && !hexColor.MatchString(*f.Color) {
		problems = append(problems, fmt.Sprintf("color must be #RRGGBB, got %q", *f.Color))
	}
	if f.Speed != nil && !speeds[*f.Speed] {
		problems = append(problems, fmt.Sprintf("speed must be slow, medium or fast, got %q", *f.Speed))
	}
	if f.Brightness != nil && (*f.Brightness < 0 || *f.Brightness > MaxBrightness) {
		problems = append(problems, fmt.Sprintf("brightness must be between 0 and %d, got %d", MaxBrightness, *f.Brightness))
	}
	if f.JoinDuration != nil && *f.JoinDuration < 0 {
		problems = append(problems, fmt.Sprintf("join duration must be >= 0, got %d", *f.JoinDuration))
	}
	if f.LeaveDuration != nil && *f.LeaveDuration < 0 {
		problems = append(problems, fmt.Sprintf("leave duration must be >= 0, got %d", *f.LeaveDuration))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
