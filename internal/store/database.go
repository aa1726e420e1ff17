package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options controls how Open connects.
type Options struct {
	Driver      string
	DatabaseURL string
	MaxRetries  int
	RetryDelay  time.Duration
}

// NormalizeDatabaseURL rewrites postgresql:// to postgres:// and adds
// sslmode=disable when no sslmode is given.
func NormalizeDatabaseURL(databaseURL string) string {
	if databaseURL == "" {
		return databaseURL
	}
	if strings.HasPrefix(databaseURL, "postgresql:") {
		databaseURL = "postgres" + strings.TrimPrefix(databaseURL, "postgresql")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}
	return databaseURL
}

// Open connects to the configured database, waiting for it to come up.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (*SQLStore, error) {
	if opts.Driver == DriverSQLite {
		db, err := sql.Open("sqlite", opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// a single connection keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		return New(db, DriverSQLite), nil
	}

	config, err := pgx.ParseConfig(NormalizeDatabaseURL(opts.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var db *sql.DB
	for i := 0; i < maxRetries; i++ {
		db = stdlib.OpenDB(*config)
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		db.Close()
		if i == maxRetries-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
		}

		ev := log.Warn().Int("attempt", i+1).Int("max_attempts", maxRetries).Dur("retry_in", opts.RetryDelay)
		if i%10 == 0 || i < 5 {
			ev = ev.Err(err)
		}
		ev.Msg("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}

	log.Info().Msg("Database connection established")
	return New(db, DriverPostgres), nil
}
