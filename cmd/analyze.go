package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/subcommands"
	"github.com/nroux/warera"
)

type analyzeCmd struct {
	from string
	to   string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "report buys, sells and profit over a period" }
func (*analyzeCmd) Usage() string {
	return `wam analyze [-from <date>] [-to <date>] [<user-id>]

  Rolls up the stored transactions of a period into per-resource and
  per-category buy/sell figures and a global net profit. Both days are
  inclusive, in UTC. The default period is the last 7 days.

Usage Examples:
$ wam analyze -from 2025-01-01 -to 2025-01-31
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day of the period (YYYY-MM-DD), default 6 days ago")
	f.StringVar(&c.to, "to", "", "Last day of the period (YYYY-MM-DD), default today")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to := warera.Today()
	if c.to != "" {
		var err error
		if to, err = warera.ParseDate(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -to date: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	from := to.Add(-6)
	if c.from != "" {
		var err error
		if from, err = warera.ParseDate(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -from date: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if to.Before(from) {
		fmt.Fprintf(os.Stderr, "Error: -to %s is before -from %s\n", to, from)
		return subcommands.ExitFailure
	}

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

	transactions, err := st.QueryRange(ctx, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	analysis := warera.Aggregate(transactions, target)
	printMarkdown(renderAnalysis(analysis, from, to))
	return subcommands.ExitSuccess
}

func renderAnalysis(a *warera.Analysis, from, to warera.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis %s to %s\n\n", from, to)
	fmt.Fprintf(&b, "- Transactions: %d\n", a.Count)
	fmt.Fprintf(&b, "- Bought: %s\n", formatMoney(a.TotalBuy))
	fmt.Fprintf(&b, "- Sold: %s\n", formatMoney(a.TotalSell))
	fmt.Fprintf(&b, "- Net profit: %s\n", formatMoney(a.NetProfit))

	writeBuckets(&b, "By resource", a.ByItem)
	writeBuckets(&b, "By category", a.ByType)
	return b.String()
}

func writeBuckets(b *strings.Builder, title string, buckets map[string]*warera.Bucket) {
	if len(buckets) == 0 {
		return
	}
	sorted := make([]*warera.Bucket, 0, len(buckets))
	for _, bucket := range buckets {
		sorted = append(sorted, bucket)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Name < sorted[j].Name
	})

	fmt.Fprintf(b, "\n## %s\n\n", title)
	fmt.Fprintln(b, "| Name | Count | Bought | Buy total | Sold | Sell total |")
	fmt.Fprintln(b, "|---|---:|---:|---:|---:|---:|")
	for _, bucket := range sorted {
		fmt.Fprintf(b, "| %s | %d | %.0f | %s | %.0f | %s |\n",
			bucket.Name, bucket.Count,
			bucket.BuyQty, formatMoney(bucket.BuyTotal),
			bucket.SellQty, formatMoney(bucket.SellTotal))
	}
}
