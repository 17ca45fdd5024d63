package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"
)

type callCmd struct {
	path string
}

func (*callCmd) Name() string     { return "call" }
func (*callCmd) Synopsis() string { return "invoke a raw API procedure" }
func (*callCmd) Usage() string {
	return `wam call [-path <jsonpath>] <procedure> [<params-json>]

  Invokes any WarEra API procedure and prints the reply as indented JSON.
  -path extracts part of the reply with a JSONPath expression.

Usage Examples:
$ wam call user.getUserLite '{"userId":"66f1a2b3c4d5e6f7a8b9c0d1"}'
$ wam call -path '$.sellOrders[0].price' tradingOrder.getTopOrders '{"itemCode":"iron","limit":2}'
`
}

func (c *callCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "path", "", "JSONPath expression applied to the reply")
}

func (c *callCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 || f.NArg() > 2 {
		fmt.Fprintf(os.Stderr, "Error: expected <procedure> [<params-json>]\n")
		return subcommands.ExitUsageError
	}
	procedure := f.Arg(0)
	var params map[string]any
	if f.NArg() == 2 {
		if err := json.Unmarshal([]byte(f.Arg(1)), &params); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid params: %v\n", err)
			return subcommands.ExitUsageError
		}
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

	raw, err := client.Call(ctx, procedure, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Not JSON; print what the server sent.
		fmt.Println(string(raw))
		return subcommands.ExitSuccess
	}

	if c.path != "" {
		jval, err := jsonpath.Get(c.path, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: jsonpath %q: %v\n", c.path, err)
			return subcommands.ExitFailure
		}
		// jsonpath is never clear about whether it returns a list of one
		// answer or a single answer; keep the first one if any.
		if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
			jval = jlist[0]
		}
		doc = jval
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}
