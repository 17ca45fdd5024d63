package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/nroux/warera"
)

type regionsCmd struct {
	item    string
	top     int
	timeout time.Duration
}

func (*regionsCmd) Name() string     { return "regions" }
func (*regionsCmd) Synopsis() string { return "rank regions by production bonus for an item" }
func (*regionsCmd) Usage() string {
	return `wam regions -item <code>

  Loads the region and country tables from the API, scores every region for
  the given item (region deposit bonus plus country specialization bonus)
  and prints the best ones.

Usage Examples:
$ wam regions -item iron
`
}

func (c *regionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "Item code to score regions for")
	f.IntVar(&c.top, "n", 15, "Number of regions to show")
	f.DurationVar(&c.timeout, "timeout", 5*time.Second, "How long to wait for the reference tables")
}

func (c *regionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.item == "" {
		fmt.Fprintf(os.Stderr, "Error: -item is required\n")
		return subcommands.ExitUsageError
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	client, err := newClient(ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cache := warera.NewReferenceCache(client)
	cache.Log = appLogger()
	if err := cache.EnsureReady(ctx, c.timeout); err != nil {
		var timeoutErr *warera.TimeoutError
		if errors.As(err, &timeoutErr) {
			fmt.Fprintf(os.Stderr, "Error: %v; the API is slow today, retry with a larger -timeout\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	ranked := cache.RankRegions(c.item)
	if len(ranked) > c.top {
		ranked = ranked[:c.top]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Best regions for %s\n\n", c.item)
	fmt.Fprintln(&b, "| Region | Country | Bonus | Deposit | Ends in |")
	fmt.Fprintln(&b, "|---|---|---:|:---:|---|")
	now := time.Now()
	for _, r := range ranked {
		countryName := "?"
		if country, ok := cache.Country(r.Region.CountryID); ok {
			countryName = country.Name
		}
		deposit := ""
		if r.Score.HasBonus {
			deposit = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %.0f%% | %s | %s |\n",
			r.Region.Name, countryName, r.Score.Score*100, deposit,
			formatDelay(r.Region.DepositDelay(now)))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// formatDelay renders a deposit expiry delay for humans, "-" when expired or
// unknown.
func formatDelay(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dmin", hours, mins)
	default:
		return fmt.Sprintf("%dmin", mins)
	}
}
