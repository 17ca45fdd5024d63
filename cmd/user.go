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

type userCmd struct {
	set bool
}

func (*userCmd) Name() string     { return "user" }
func (*userCmd) Synopsis() string { return "show a user profile" }
func (*userCmd) Usage() string {
	return `wam user [-set] [<user-id>]

  Shows the user's profile as reported by the API. When the fetch fails the
  documented defaults are shown instead. -set stores the user as the
  default target for the other commands.

Usage Examples:
$ wam user -set 66f1a2b3c4d5e6f7a8b9c0d1
`
}

func (c *userCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.set, "set", false, "Store this user as the default target")
}

func (c *userCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	target, err := resolveTarget(ctx, st, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := newClient(ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	profile, err := client.UserLite(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: profile fetch failed (%v), using defaults\n", err)
		profile = warera.DefaultProfile(target)
	}

	fmt.Printf("Name:                %s\n", profile.Name)
	fmt.Printf("Production:          %.1f\n", profile.Production)
	if profile.EstimatedWorkPerDay > 0 {
		fmt.Printf("Est. work per day:   %.1f\n", profile.EstimatedWorkPerDay)
	}

	if c.set {
		if err := st.SetSetting(ctx, store.SettingTargetUser, target); err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not store default user: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("\n%s is now the default user.\n", target)
	}
	return subcommands.ExitSuccess
}
