package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ledcord/voicelight/internal/audit"
	"github.com/ledcord/voicelight/internal/lightconfig"
)

const rule = "════════════════════════════════════════════════════════════"

// AuditLog receives one entry per successful change.
type AuditLog interface {
	Create(ctx context.Context, e *audit.Entry) error
}

// Menu is an interactive session over a configuration store.
type Menu struct {
	store lightconfig.Store
	audit AuditLog
	in    *bufio.Scanner
	out   io.Writer
}

// New creates a menu reading answers from in and writing to out.
func New(store lightconfig.Store, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// SetAuditLog records every change made from this menu.
func (m *Menu) SetAuditLog(log AuditLog) {
	m.audit = log
}

// Run shows the menu until the user picks Exit or input ends.
// Store errors are reported to the user and do not end the session.
func (m *Menu) Run(ctx context.Context) error {
	m.printf("\nLED User Manager\n%s\n", rule)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printf("\nOptions:\n")
		m.printf("1. List all users\n")
		m.printf("2. Add/Update user\n")
		m.printf("3. Remove user\n")
		m.printf("4. Enable/Disable user\n")
		m.printf("5. Exit\n")

		choice, ok := m.ask("\nSelect option (1-5): ")
		if !ok {
			return m.in.Err()
		}

		var err error
		switch choice {
		case "1":
			err = m.list(ctx)
		case "2":
			err = m.upsert(ctx)
		case "3":
			err = m.remove(ctx)
		case "4":
			err = m.toggle(ctx)
		case "5":
			m.printf("\nGoodbye!\n")
			return nil
		default:
			m.printf("\nInvalid option\n")
		}

		if errors.Is(err, io.EOF) {
			return m.in.Err()
		}
		if err != nil {
			m.printf("\nError: %v\n", err)
		}
	}
}

func (m *Menu) list(ctx context.Context) error {
	users, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		m.printf("\nNo users configured yet.\n")
		return nil
	}

	m.printf("\nCurrent Users:\n%s\n", rule)
	for i, u := range users {
		status := "enabled"
		if !u.Enabled {
			status = "disabled"
		}
		name := u.Username
		if name == "" {
			name = "Unknown"
		}
		m.printf("\n%d. [%s] %s\n", i+1, status, name)
		m.printf("   User ID: %s\n", u.UserID)
		m.printf("   Device: %s | LED: %d\n", u.Device, u.LED)
		m.printf("   Join: %s (%s) | Leave: %s\n", u.JoinEffect, u.Color, u.LeaveEffect)
		m.printf("   Created: %s\n", u.CreatedAt.Local().Format(time.DateTime))
	}
	m.printf("\n%s\n", rule)
	return nil
}

func (m *Menu) upsert(ctx context.Context) error {
	m.printf("\nAdd/Update User\n")

	userID, ok := m.ask("Discord User ID: ")
	if !ok {
		return io.EOF
	}
	username, ok := m.ask("Username (optional): ")
	if !ok {
		return io.EOF
	}
	device, ok := m.ask("Device id (e.g., desk01): ")
	if !ok {
		return io.EOF
	}

	var (
		fields = lightconfig.Fields{Device: device}
		err    error
	)
	if fields.LED, err = m.askInt("LED index: "); err != nil {
		return err
	}
	if fields.Color, err = m.askString(fmt.Sprintf("Color [%s]: ", lightconfig.DefaultColor)); err != nil {
		return err
	}
	if fields.JoinEffect, err = m.askString(fmt.Sprintf("Join effect (wakeup/pulse/breathe/solid) [%s]: ", lightconfig.DefaultJoinEffect)); err != nil {
		return err
	}

	effect := lightconfig.DefaultJoinEffect
	if fields.JoinEffect != nil {
		effect = *fields.JoinEffect
	}
	switch effect {
	case "wakeup":
		if fields.JoinDuration, err = m.askInt(fmt.Sprintf("Duration (ms) [%d]: ", lightconfig.DefaultJoinDuration)); err != nil {
			return err
		}
		if fields.NextEffect, err = m.askString(fmt.Sprintf("Next effect (breathe/pulse/none) [%s]: ", lightconfig.DefaultNextEffect)); err != nil {
			return err
		}
	case "pulse", "breathe":
		if fields.Speed, err = m.askString(fmt.Sprintf("Speed (slow/medium/fast) [%s]: ", lightconfig.DefaultSpeed)); err != nil {
			return err
		}
	}

	if fields.Brightness, err = m.askInt(fmt.Sprintf("Brightness (0-%d) [%d]: ", lightconfig.MaxBrightness, lightconfig.DefaultBrightness)); err != nil {
		return err
	}
	if fields.LeaveEffect, err = m.askString(fmt.Sprintf("Leave effect (sleep/off) [%s]: ", lightconfig.DefaultLeaveEffect)); err != nil {
		return err
	}
	if fields.LeaveEffect == nil || *fields.LeaveEffect == "sleep" {
		if fields.LeaveDuration, err = m.askInt(fmt.Sprintf("Sleep duration (ms) [%d]: ", lightconfig.DefaultLeaveDuration)); err != nil {
			return err
		}
	}

	if err := m.store.Upsert(ctx, userID, username, fields); err != nil {
		return err
	}
	m.printf("\nUser saved.\n")
	m.record(ctx, audit.ActionUpsert, userID, map[string]any{
		"username": username,
		"device":   device,
	})
	return nil
}

func (m *Menu) remove(ctx context.Context) error {
	userID, ok := m.ask("\nUser ID to remove: ")
	if !ok {
		return io.EOF
	}

	user, err := m.store.Get(ctx, userID)
	if errors.Is(err, lightconfig.ErrNotFound) {
		m.printf("User not found\n")
		return nil
	}
	if err != nil {
		return err
	}

	m.printf("\nAre you sure you want to remove %s?\n", displayName(user))
	answer, ok := m.ask("Type 'yes' to confirm: ")
	if !ok {
		return io.EOF
	}
	if !strings.EqualFold(answer, "yes") {
		m.printf("Cancelled\n")
		return nil
	}

	if err := m.store.Delete(ctx, userID); err != nil {
		return err
	}
	m.printf("User removed\n")
	m.record(ctx, audit.ActionDelete, userID, map[string]any{
		"device": user.Device,
		"led":    user.LED,
	})
	return nil
}

func (m *Menu) toggle(ctx context.Context) error {
	userID, ok := m.ask("\nUser ID to enable/disable: ")
	if !ok {
		return io.EOF
	}

	user, err := m.store.Get(ctx, userID)
	if errors.Is(err, lightconfig.ErrNotFound) {
		m.printf("User not found\n")
		return nil
	}
	if err != nil {
		return err
	}

	enabled := !user.Enabled
	if err := m.store.SetEnabled(ctx, userID, enabled); err != nil {
		return err
	}
	action := audit.ActionDisable
	if enabled {
		action = audit.ActionEnable
		m.printf("User enabled\n")
	} else {
		m.printf("User disabled\n")
	}
	m.record(ctx, action, userID, nil)
	return nil
}

// record writes an audit entry. The change itself has already been saved,
// so a failure is reported without failing the operation.
func (m *Menu) record(ctx context.Context, action, userID string, details map[string]any) {
	if m.audit == nil {
		return
	}
	err := m.audit.Create(ctx, &audit.Entry{
		Action:  action,
		UserID:  userID,
		Source:  audit.SourceAdmin,
		Details: details,
	})
	if err != nil {
		m.printf("Warning: change not recorded in audit log: %v\n", err)
	}
}

// ask prints prompt and returns the next trimmed line.
// ok is false once input is exhausted.
func (m *Menu) ask(prompt string) (string, bool) {
	m.printf("%s", prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// askString returns nil for an empty answer so the store applies its default.
func (m *Menu) askString(prompt string) (*string, error) {
	answer, ok := m.ask(prompt)
	if !ok {
		return nil, io.EOF
	}
	if answer == "" {
		return nil, nil
	}
	return &answer, nil
}

// askInt returns nil for an empty answer so the store applies its default.
func (m *Menu) askInt(prompt string) (*int, error) {
	answer, ok := m.ask(prompt)
	if !ok {
		return nil, io.EOF
	}
	if answer == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(answer)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", answer)
	}
	return &v, nil
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func displayName(u lightconfig.UserLightConfig) string {
	if u.Username != "" {
		return u.Username
	}
	return u.UserID
}
