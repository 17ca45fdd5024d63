// Package cmd implements the wam CLI application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nroux/warera"
	"github.com/nroux/warera/logger"
	"github.com/nroux/warera/store"
	"github.com/nroux/warera/trpc"
	"github.com/rs/zerolog"
)

// EnvAPIKey is the environment variable holding the session-scoped API key.
// It wins over the key persisted in the database.
const EnvAPIKey = "WARERA_API_KEY"

// EnvDBPath overrides the default database location; the -db flag still wins.
const EnvDBPath = "WARERA_DB"

// As a CLI application with a very short-lived lifecycle, it is ok to use
// global variables for the application flags.

var dbPath = flag.String("db", defaultDBPath(), "Path to the local transaction database")
var endpoint = flag.String("endpoint", trpc.DefaultEndpoint, "WarEra API endpoint")
var verbose = flag.Bool("v", false, "Enable debug logging")

func defaultDBPath() string {
	if path := os.Getenv(EnvDBPath); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "warera.db"
	}
	return filepath.Join(home, ".warera", "warera.db")
}

func appLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return logger.New(level)
}

// openStore is the central function to open the local database, creating its
// parent directory on first use.
func openStore() (*store.Store, error) {
	if dir := filepath.Dir(*dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return store.Open(*dbPath)
}

// resolveAPIKey returns the configured API key and the scope it came from,
// "session" or "persistent". Both empty means no key is configured.
func resolveAPIKey(ctx context.Context, st *store.Store) (key, scope string, err error) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, "session", nil
	}
	key, err = st.Setting(ctx, store.SettingAPIKey)
	if err != nil {
		return "", "", err
	}
	if key == "" {
		return "", "", nil
	}
	return key, "persistent", nil
}

// newClient builds the remote client with whatever API key is configured.
func newClient(ctx context.Context, st *store.Store) (*trpc.Client, error) {
	key, _, err := resolveAPIKey(ctx, st)
	if err != nil {
		return nil, err
	}
	c := trpc.New(*endpoint, key)
	c.Log = appLogger()
	return c, nil
}

// resolveTarget returns the user id given on the command line, falling back
// to the stored default user.
func resolveTarget(ctx context.Context, st *store.Store, f *flag.FlagSet) (string, error) {
	if f.NArg() > 0 {
		return f.Arg(0), nil
	}
	id, err := st.Setting(ctx, store.SettingTargetUser)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w (pass a user id or set one with 'wam user -set <id>')", warera.ErrMissingUser)
	}
	return id, nil
}
