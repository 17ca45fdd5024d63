package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/nroux/warera"
)

type priceCmd struct{}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "show the best market price for items" }
func (*priceCmd) Usage() string {
	return `wam price <item-code> [<item-code>...]

  Shows the best sell-order price for each item. An empty order book prints
  as zero.

Usage Examples:
$ wam price iron grain
`
}
func (*priceCmd) SetFlags(f *flag.FlagSet) {}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: expected at least one item code\n")
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

	// Memoized so a repeated item code costs a single remote call.
	prices := warera.NewPriceCache(client)
	status := subcommands.ExitSuccess
	for _, item := range f.Args() {
		p, err := prices.Price(ctx, item)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", item, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s: %s\n", item, formatPrice(p))
	}
	return status
}
