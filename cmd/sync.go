package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/nroux/warera"
	"github.com/nroux/warera/store"
)

type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "download new transactions into the local database" }
func (*syncCmd) Usage() string {
	return `wam sync [<user-id>]

  Pulls the user's transaction feed from the WarEra API and stores every
  record newer than the local history. Already-synced pages are never
  downloaded again. Without an argument the stored default user is synced.

Usage Examples:
$ wam sync 66f1a2b3c4d5e6f7a8b9c0d1
`
}
func (*syncCmd) SetFlags(f *flag.FlagSet) {}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	userID, err := resolveTarget(ctx, st, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	client, err := newClient(ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	syncer := warera.NewSyncer(client, st)
	syncer.Log = appLogger()

	progress := make(chan int, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := range progress {
			fmt.Fprintf(os.Stderr, "\rsynced %d new transactions...", n)
		}
	}()

	res := syncer.Run(ctx, userID, progress)
	close(progress)
	<-done
	if res.NewCount > 0 {
		fmt.Fprintln(os.Stderr)
	}

	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: sync failed after %d new transactions: %v\n", res.NewCount, res.Err)
		return subcommands.ExitFailure
	}

	// Remember an explicitly given user as the default target.
	if f.NArg() > 0 {
		if err := st.SetSetting(ctx, store.SettingTargetUser, userID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not store default user: %v\n", err)
		}
	}

	fmt.Printf("%d new transactions, %d total in the database.\n", res.NewCount, res.TotalInDB)
	return subcommands.ExitSuccess
}
