// syncdb runs one reconciliation pass of per-table "last modified"
// timestamps between two personal-data services. Dry run by default; pass
// -apply to actually upload.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-trakt-server/dbsync"
	"github.com/jrsteele09/go-trakt-server/internal/config"
)

func main() {
	configPath := flag.String("config", "config.env", "key=value config file")
	apply := flag.Bool("apply", false, "upload rows instead of reporting what would move")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(*configPath, *apply, logger); err != nil {
		logger.Fatal().Err(err).Msg("sync failed")
	}
}

func run(configPath string, apply bool, logger zerolog.Logger) error {
	values, err := config.LoadKeyValues(configPath)
	if err != nil {
		return err
	}

	first, err := dbsync.NewClient(values["SYNC_ENDPOINT0"], values["SYNC_USERNAME"], values["SYNC_PASSWORD"])
	if err != nil {
		return err
	}
	second, err := dbsync.NewClient(values["SYNC_ENDPOINT1"], values["SYNC_USERNAME"], values["SYNC_PASSWORD"])
	if err != nil {
		return err
	}

	reconciler := dbsync.NewReconciler(first, second, logger)
	reconciler.DryRun = !apply
	return reconciler.Run(context.Background())
}
