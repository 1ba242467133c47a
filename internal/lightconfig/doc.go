// Package lightconfig stores the per-user lighting configuration that maps a
// chat user to an LED on a lighting controller.
//
// It provides:
//   - UserLightConfig, the persisted row (one per user identity)
//   - Fields, the caller-supplied values for an upsert, with documented defaults
//   - Store, the persistence contract, and SQLiteStore, its implementation
//
// Disabled rows are invisible to Lookup and ListEnabled but remain readable
// through Get and List, which the admin tool uses.
//
// Every mutation is a single SQL statement, so a concurrent Lookup sees
// either the old row or the new one, never a mix.
//
// Usage:
//
//	store := lightconfig.NewSQLiteStore(db.DB)
//	err := store.Upsert(ctx, "123456789012345678", "alice", lightconfig.Fields{
//	    Device: "desk01",
//	    LED:    lightconfig.Int(2),
//	    Color:  lightconfig.String("#FF0000"),
//	})
//
//	cfg, ok, err := store.Lookup(ctx, "123456789012345678")
package lightconfig
