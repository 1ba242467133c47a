// Package migrations embeds SQL migration files into the binary.
//
// Importing it for side effects registers the files with the database
// package, so both the bridge and the admin tool create the same schema.
package migrations

import (
	"embed"

	"github.com/ledcord/voicelight/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
