package lightconfig

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ledcord/voicelight/internal/infrastructure/database"
	_ "github.com/ledcord/voicelight/migrations"
)

// setupTestStore opens a migrated database in a temp dir and returns a store
// whose clock advances one second per call.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "led-map.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	store := NewSQLiteStore(db.DB)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

// wakeupFields is the configuration used throughout the scenarios.
func wakeupFields() Fields {
	return Fields{
		Device:       "d1",
		LED:          Int(2),
		Color:        String("#FF0000"),
		JoinEffect:   String("wakeup"),
		JoinDuration: Int(6000),
		NextEffect:   String("breathe"),
	}
}

func TestSQLiteStore_UpsertLookupRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "u1", "alice", wakeupFields()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, ok, err := store.Lookup(ctx, "u1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok {
		t.Fatal("Lookup() ok = false, want true")
	}

	want := UserLightConfig{
		UserID:        "u1",
		Username:      "alice",
		Device:        "d1",
		LED:           2,
		Color:         "#FF0000",
		JoinEffect:    "wakeup",
		JoinDuration:  6000,
		NextEffect:    "breathe",
		Speed:         DefaultSpeed,
		Brightness:    DefaultBrightness,
		LeaveEffect:   DefaultLeaveEffect,
		LeaveDuration: DefaultLeaveDuration,
		Enabled:       true,
	}
	got.CreatedAt, got.UpdatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup() = %+v, want %+v", got, want)
	}
}

func TestSQLiteStore_UpsertDefaults(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "u1", "", Fields{Device: "d1", LED: Int(0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"Color", got.Color, DefaultColor},
		{"JoinEffect", got.JoinEffect, DefaultJoinEffect},
		{"JoinDuration", got.JoinDuration, DefaultJoinDuration},
		{"NextEffect", got.NextEffect, DefaultNextEffect},
		{"Speed", got.Speed, DefaultSpeed},
		{"Brightness", got.Brightness, DefaultBrightness},
		{"LeaveEffect", got.LeaveEffect, DefaultLeaveEffect},
		{"LeaveDuration", got.LeaveDuration, DefaultLeaveDuration},
		{"Enabled", got.Enabled, true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestSQLiteStore_UpsertExplicitZeroKept(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	f := Fields{Device: "d1", LED: Int(0), Brightness: Int(0), JoinDuration: Int(0)}
	if err := store.Upsert(ctx, "u1", "", f); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Brightness != 0 {
		t.Errorf("Brightness = %d, want 0", got.Brightness)
	}
	if got.JoinDuration != 0 {
		t.Errorf("JoinDuration = %d, want 0", got.JoinDuration)
	}
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := wakeupFields()
	first.Speed = String("fast")
	if err := store.Upsert(ctx, "u1", "alice", first); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	before, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	second := Fields{Device: "d2", LED: Int(7), JoinEffect: String("solid"), Brightness: Int(128)}
	if err := store.Upsert(ctx, "u1", "alice2", second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	after, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if after.Device != "d2" || after.LED != 7 || after.JoinEffect != "solid" || after.Brightness != 128 {
		t.Errorf("supplied fields not applied: %+v", after)
	}
	if after.Username != "alice2" {
		t.Errorf("Username = %q, want %q", after.Username, "alice2")
	}

	// Omitted fields revert to defaults rather than keeping the stored value.
	if after.Speed != DefaultSpeed {
		t.Errorf("Speed = %q, want default %q", after.Speed, DefaultSpeed)
	}
	if after.Color != DefaultColor {
		t.Errorf("Color = %q, want default %q", after.Color, DefaultColor)
	}

	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt not bumped: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d rows, want 1", len(all))
	}
}

func TestSQLiteStore_UpsertKeepsDisabled(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "u1", "", wakeupFields()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.SetEnabled(ctx, "u1", false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if err := store.Upsert(ctx, "u1", "", wakeupFields()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if _, ok, _ := store.Lookup(ctx, "u1"); ok {
		t.Error("Lookup() ok = true; upsert must not re-enable a disabled user")
	}
}

func TestSQLiteStore_UpsertValidation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		fields Fields
	}{
		{"missing user id", "", Fields{Device: "d1", LED: Int(0)}},
		{"missing device", "u1", Fields{LED: Int(0)}},
		{"missing led", "u1", Fields{Device: "d1"}},
		{"negative led", "u1", Fields{Device: "d1", LED: Int(-1)}},
		{"brightness too high", "u1", Fields{Device: "d1", LED: Int(0), Brightness: Int(256)}},
		{"brightness negative", "u1", Fields{Device: "d1", LED: Int(0), Brightness: Int(-1)}},
		{"negative join duration", "u1", Fields{Device: "d1", LED: Int(0), JoinDuration: Int(-5)}},
		{"negative leave duration", "u1", Fields{Device: "d1", LED: Int(0), LeaveDuration: Int(-5)}},
		{"color name", "u1", Fields{Device: "d1", LED: Int(0), Color: String("red")}},
		{"short hex color", "u1", Fields{Device: "d1", LED: Int(0), Color: String("#FFF")}},
		{"color without hash", "u1", Fields{Device: "d1", LED: Int(0), Color: String("00FFAA")}},
		{"unknown speed", "u1", Fields{Device: "d1", LED: Int(0), Speed: String("warp")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Upsert(ctx, tt.userID, "", tt.fields)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Upsert() error = %v, want ErrValidation", err)
			}
		})
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected upserts wrote %d rows", len(all))
	}
}

func TestSQLiteStore_LookupMissing(t *testing.T) {
	store := setupTestStore(t)

	_, ok, err := store.Lookup(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Lookup() error = %v, want nil", err)
	}
	if ok {
		t.Error("Lookup() ok = true for missing user")
	}
}

func TestSQLiteStore_SetEnabled(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "u1", "alice", wakeupFields()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	original, _, _ := store.Lookup(ctx, "u1")

	t.Run("disable hides from lookup but keeps row", func(t *testing.T) {
		if err := store.SetEnabled(ctx, "u1", false); err != nil {
			t.Fatalf("SetEnabled(false) error = %v", err)
		}
		if _, ok, _ := store.Lookup(ctx, "u1"); ok {
			t.Error("Lookup() ok = true for disabled user")
		}
		raw, err := store.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if raw.Enabled {
			t.Error("Get().Enabled = true, want false")
		}
		enabled, err := store.ListEnabled(ctx)
		if err != nil {
			t.Fatalf("ListEnabled() error = %v", err)
		}
		if len(enabled) != 0 {
			t.Errorf("ListEnabled() returned %d rows, want 0", len(enabled))
		}
	})

	t.Run("re-enable restores original data", func(t *testing.T) {
		if err := store.SetEnabled(ctx, "u1", true); err != nil {
			t.Fatalf("SetEnabled(true) error = %v", err)
		}
		got, ok, err := store.Lookup(ctx, "u1")
		if err != nil || !ok {
			t.Fatalf("Lookup() = ok %v, err %v", ok, err)
		}
		got.UpdatedAt = original.UpdatedAt
		if !reflect.DeepEqual(got, original) {
			t.Errorf("Lookup() = %+v, want %+v", got, original)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if err := store.SetEnabled(ctx, "nobody", true); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetEnabled() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "u1", "", wakeupFields()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Upsert(ctx, "u2", "", wakeupFields()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := store.Lookup(ctx, "u1"); ok {
		t.Error("Lookup() ok = true after Delete")
	}
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	// The other row is untouched.
	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 || all[0].UserID != "u2" {
		t.Errorf("List() = %+v, want only u2", all)
	}
}

func TestSQLiteStore_ListOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		if err := store.Upsert(ctx, id, "", wakeupFields()); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}
	if err := store.SetEnabled(ctx, "u2", false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if ids := userIDs(all); !reflect.DeepEqual(ids, []string{"u3", "u2", "u1"}) {
		t.Errorf("List() order = %v, want newest first", ids)
	}

	enabled, err := store.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("ListEnabled() error = %v", err)
	}
	if ids := userIDs(enabled); !reflect.DeepEqual(ids, []string{"u1", "u3"}) {
		t.Errorf("ListEnabled() = %v, want [u1 u3]", ids)
	}
}

func TestSQLiteStore_LookupReturnsCopy(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "u1", "", wakeupFields()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	first, _, _ := store.Lookup(ctx, "u1")
	first.Color = "#000000"

	second, _, _ := store.Lookup(ctx, "u1")
	if second.Color != "#FF0000" {
		t.Errorf("stored Color = %q after mutating a returned copy", second.Color)
	}
}

func userIDs(configs []UserLightConfig) []string {
	ids := make([]string, 0, len(configs))
	for _, c := range configs {
		ids = append(ids, c.UserID)
	}
	return ids
}

func TestSQLiteStore_UpsertAcceptsColorAndSpeed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i, tt := range []struct {
		color string
		speed string
	}{
		{"#00ffaa", "slow"},
		{"#A1B2C3", "medium"},
		{"#000000", "fast"},
	} {
		fields := Fields{Device: "d1", LED: Int(i), Color: String(tt.color), Speed: String(tt.speed)}
		if err := store.Upsert(ctx, "u1", "", fields); err != nil {
			t.Errorf("Upsert(color %q, speed %q) error = %v", tt.color, tt.speed, err)
		}
	}
}
