// Package dbsync reconciles per-table "last modified" timestamps between two
// remote personal-data services: whichever side saw a table change last
// pushes the newer rows to the other (last-write-wins, no conflict
// detection).
package dbsync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// EntryMap translates a table name into the payload key the receiving
// service expects on upload.
var EntryMap = map[string]string{
	"imdb_episodes":    "episodes",
	"imdb_ratings":     "shows",
	"movie_collection": "collection",
	"movie_queue":      "queue",
}

// Reconciler drives one sync pass between two services.
type Reconciler struct {
	first  *Client
	second *Client
	log    zerolog.Logger

	// DryRun skips the upload step and only reports what would move.
	DryRun bool
}

func NewReconciler(first, second *Client, log zerolog.Logger) *Reconciler {
	return &Reconciler{first: first, second: second, log: log, DryRun: true}
}

// Run authenticates against both services and reconciles every table both
// sides report. Tables known to only one side are skipped.
func (r *Reconciler) Run(ctx context.Context) error {
	if err := r.first.Login(ctx); err != nil {
		return fmt.Errorf("failed to authenticate to %s: %w", r.first.Endpoint, err)
	}
	if err := r.second.Login(ctx); err != nil {
		return fmt.Errorf("failed to authenticate to %s: %w", r.second.Endpoint, err)
	}

	firstMods, err := r.first.LastModified(ctx)
	if err != nil {
		return err
	}
	secondMods, err := r.second.LastModified(ctx)
	if err != nil {
		return err
	}

	for table, firstMod := range firstMods {
		secondMod, ok := secondMods[table]
		if !ok {
			continue
		}
		r.log.Info().
			Str("table", table).
			Time("first", firstMod).
			Time("second", secondMod).
			Msg("comparing")

		switch {
		case firstMod.After(secondMod):
			if err := r.push(ctx, table, r.first, r.second, secondMod); err != nil {
				return err
			}
		case secondMod.After(firstMod):
			if err := r.push(ctx, table, r.second, r.first, firstMod); err != nil {
				return err
			}
		}
	}
	return nil
}

// push moves rows newer than since from source to destination.
func (r *Reconciler) push(ctx context.Context, table string, src, dst *Client, since time.Time) error {
	key, ok := EntryMap[table]
	if !ok {
		r.log.Warn().Str("table", table).Msg("no payload key for table, skipping")
		return nil
	}

	rows, err := src.Rows(ctx, table, since)
	if err != nil {
		return fmt.Errorf("failed to fetch %s from %s: %w", table, src.Endpoint, err)
	}
	r.log.Info().
		Str("table", table).
		Str("from", src.Endpoint).
		Str("to", dst.Endpoint).
		Int("rows", len(rows)).
		Bool("dry_run", r.DryRun).
		Msg("pushing newer rows")

	if r.DryRun || len(rows) == 0 {
		return nil
	}
	if err := dst.Push(ctx, table, key, rows); err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", table, dst.Endpoint, err)
	}
	return nil
}
