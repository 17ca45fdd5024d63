package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/subcommands"
	"github.com/nroux/warera"
	"github.com/nroux/warera/store"
	"github.com/nroux/warera/trpc"
)

type apikeyCmd struct {
	persist bool
	clear   bool
}

func (*apikeyCmd) Name() string     { return "apikey" }
func (*apikeyCmd) Synopsis() string { return "configure the WarEra API key" }
func (*apikeyCmd) Usage() string {
	return `wam apikey [-persist] <key>
wam apikey -clear

  Validates the key against the API, then either prints the export line for
  the session scope (default) or stores the key in the database (-persist).
  Setting one scope clears the other so they never disagree. -clear removes
  the persistent key.
`
}

func (c *apikeyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.persist, "persist", false, "Store the key in the database instead of the session")
	f.BoolVar(&c.clear, "clear", false, "Remove the persistent key")
}

func (c *apikeyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	if c.clear {
		if err := st.DeleteSetting(ctx, store.SettingAPIKey); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println("Persistent API key removed.")
		if os.Getenv(EnvAPIKey) != "" {
			fmt.Printf("Note: %s is still set in this session.\n", EnvAPIKey)
		}
		return subcommands.ExitSuccess
	}

	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one key argument\n")
		return subcommands.ExitUsageError
	}
	key := f.Arg(0)

	if err := c.validate(ctx, st, key); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.persist {
		if err := st.SetSetting(ctx, store.SettingAPIKey, key); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println("API key stored in the database.")
		if os.Getenv(EnvAPIKey) != "" {
			fmt.Printf("Note: the session scope (%s) still wins; unset it to use the stored key.\n", EnvAPIKey)
		}
		return subcommands.ExitSuccess
	}

	// Session scope: print the export line and drop the persistent key so the
	// two scopes cannot disagree silently.
	if err := st.DeleteSetting(ctx, store.SettingAPIKey); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("export %s=%s\n", EnvAPIKey, key)
	return subcommands.ExitSuccess
}

// validate issues a one-record feed request with the candidate key. Only an
// authentication failure rejects the key; any other error (network, unknown
// user) is reported as a warning since it says nothing about the key itself.
func (c *apikeyCmd) validate(ctx context.Context, st *store.Store, key string) error {
	target, err := st.Setting(ctx, store.SettingTargetUser)
	if err != nil {
		return err
	}
	if target == "" {
		// The feed rejects bad keys before looking at the user id.
		target = "000000000000000000000000"
	}

	client := trpc.New(*endpoint, key)
	client.Log = appLogger()
	_, err = client.Transactions(ctx, warera.TransactionQuery{
		UserID: target,
		Types:  warera.TrackedTypes,
		Limit:  1,
	})

	var rpcErr *trpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.Status == http.StatusUnauthorized || rpcErr.Status == http.StatusForbidden {
			return fmt.Errorf("the API rejected this key: %s", rpcErr.Message)
		}
		fmt.Fprintf(os.Stderr, "Warning: could not fully validate the key: %v\n", err)
		return nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not fully validate the key: %v\n", err)
	}
	return nil
}
