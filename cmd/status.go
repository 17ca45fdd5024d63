package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/nroux/warera"
	"github.com/nroux/warera/store"
)

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show the local database and configuration state" }
func (*statusCmd) Usage() string {
	return `wam status

  Shows how many transactions are stored, the time span they cover, which
  API key scope is active and the default user.
`
}
func (*statusCmd) SetFlags(f *flag.FlagSet) {}

func (c *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	overview, err := warera.NewOverview(ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	_, keyScope, err := resolveAPIKey(ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	target, err := st.Setting(ctx, store.SettingTargetUser)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Status\n\n")
	fmt.Fprintf(&b, "- Database: %s\n", *dbPath)
	fmt.Fprintf(&b, "- Transactions: %d\n", overview.TotalTransactions)
	if overview.TotalTransactions > 0 {
		fmt.Fprintf(&b, "- Oldest: %s\n", overview.Oldest)
		fmt.Fprintf(&b, "- Last update: %s\n", overview.LastUpdate)
	}
	switch keyScope {
	case "session":
		fmt.Fprintf(&b, "- API key: session scope (%s)\n", EnvAPIKey)
	case "persistent":
		fmt.Fprintf(&b, "- API key: persistent scope (database)\n")
	default:
		fmt.Fprintf(&b, "- API key: not configured, see 'wam topic apikey'\n")
	}
	if target != "" {
		fmt.Fprintf(&b, "- Default user: %s\n", target)
	} else {
		fmt.Fprintf(&b, "- Default user: not set\n")
	}

	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
