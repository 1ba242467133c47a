// voicelight-admin - manage the users tracked by the voicelight bridge
//
// An interactive menu over the same database the bridge reads. It needs only
// the database section of the configuration; Discord and MQTT settings are
// ignored.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/ledcord/voicelight/migrations"

	"github.com/ledcord/voicelight/internal/admin"
	"github.com/ledcord/voicelight/internal/audit"
	"github.com/ledcord/voicelight/internal/infrastructure/config"
	"github.com/ledcord/voicelight/internal/infrastructure/database"
	"github.com/ledcord/voicelight/internal/lightconfig"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run opens the database and hands the terminal to the menu.
func run(ctx context.Context, in io.Reader, out io.Writer) error {
	configPath := config.DefaultPath
	if path := os.Getenv("VOICELIGHT_CONFIG"); path != "" {
		configPath = path
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Nothing useful to do on exit

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	menu := admin.New(lightconfig.NewSQLiteStore(db.DB), in, out)
	menu.SetAuditLog(audit.NewSQLiteRepository(db.DB))
	return menu.Run(ctx)
}
