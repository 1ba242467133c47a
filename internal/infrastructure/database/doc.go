// Package database provides SQLite connectivity for the voicelight mapping store.
//
// This package manages:
//   - Database connection with WAL mode so the admin tool and bridge can share the file
//   - Forward-only schema migrations embedded in the binary
//   - Connection lifecycle and health checks
//
// All queries issued through this package's callers use parameterised
// statements. The database file is restricted to 0600.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
