package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nroux/warera"
	"github.com/nroux/warera/docs"
	"github.com/nroux/warera/store"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator creates the expert in charge of the conversation.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user plays the browser game WarEra and is here primarily to understand his in-game
			economy: what he buys and sells, how profitable his trading is, where to produce.

			Devise a plan of questions to ask each expert and come up with the best response to the
			user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewScout returns the expert grounding answers in live information.
func NewScout() *Expert {
	return &Expert{
		Name: "Scout",
		Description: `This is the Scout. He is very well aware of the WarEra game, its mechanics,
		items, markets and community. Ask the Scout whenever you need recent or grounding
		information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert scout of the WarEra browser game. You can search and find anything
			related to the game: mechanics, items, production, wars, markets. You leverage Google
			Search to ground your assertions in a solid truth, and you know how to relate the
			latest news to the user's request.
			`}}},
		},
	}
}

// NewEconomist returns the expert in charge of the user's local transaction
// history, stored in the database at dbPath.
func NewEconomist(dbPath string) *Expert {
	lib := []Function{overviewFunc(dbPath), analysisFunc(dbPath)}

	return &Expert{
		Name: "Economist",
		Description: `This is the Economist. He is in charge of reading the user's local WarEra
		transaction history. He can compute the relevant figures about the user's trading:
		totals, per-resource and per-category buys and sells, and net profit over a period.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an economist in charge of the user's WarEra transaction history.
			You know how to use the Tools to extract relevant figures about the user's trading.
			You are part of a team of experts; yours is everything about the local history. They
			might ask you questions in approximative language, figure out what they meant.

			Use the available tools to get information about the user's history:
			  - overall totals and the time span covered
			  - buy/sell/profit analysis over a period
		`}}},
		},
		Library: NewLibrary(lib),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

// overviewFunc reports the headline figures of the local database.
func overviewFunc(dbPath string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Overview",
			Description: `Overview reports how many transactions are stored locally and the time
			span they cover.`,
			Parameters: &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A short text with the total count, oldest and newest timestamps.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			st, err := store.Open(dbPath)
			if err != nil {
				return failure(id, "Overview", err)
			}
			defer st.Close()

			overview, err := warera.NewOverview(ctx, st)
			if err != nil {
				return failure(id, "Overview", err)
			}
			out := fmt.Sprintf("%d transactions stored", overview.TotalTransactions)
			if overview.TotalTransactions > 0 {
				out += fmt.Sprintf(", from %s to %s", overview.Oldest, overview.LastUpdate)
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "Overview",
				Response: map[string]any{
					"output": out,
				},
			}
		},
	}
}

// analysisFunc rolls up a period of the local history for a user.
func analysisFunc(dbPath string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Analysis",
			Description: `Analysis computes per-resource and per-category buy/sell figures and the
			net profit over a period of the user's local transaction history.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"userId": {
						Type:        genai.TypeString,
						Description: "The user id whose point of view is analyzed.",
					},
					"from": {
						Type: genai.TypeString,
						Description: `First day of the period. 6 days before 'to' is the default.
						Date format:

						` + must(docs.GetTopic("dates")),
					},
					"to": {
						Type:        genai.TypeString,
						Description: "Last day of the period. Today is the default.",
					},
				},
				Required: []string{"userId"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report of buys, sells and net profit for the period.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			userID, _ := args["userId"].(string)
			if userID == "" {
				return failure(id, "Analysis", warera.ErrMissingUser)
			}
			to, err := parseDate(args, "to", warera.Today())
			if err != nil {
				return failure(id, "Analysis", err)
			}
			from, err := parseDate(args, "from", to.Add(-6))
			if err != nil {
				return failure(id, "Analysis", err)
			}

			st, err := store.Open(dbPath)
			if err != nil {
				return failure(id, "Analysis", err)
			}
			defer st.Close()

			transactions, err := st.QueryRange(ctx, from, to)
			if err != nil {
				return failure(id, "Analysis", err)
			}
			analysis := warera.Aggregate(transactions, userID)

			return &genai.FunctionResponse{
				ID:   id,
				Name: "Analysis",
				Response: map[string]any{
					"output": analysisMarkdown(analysis, from, to),
				},
			}
		},
	}
}

func parseDate(args map[string]any, key string, fallback warera.Date) (warera.Date, error) {
	idate, ok := args[key]
	if !ok {
		return fallback, nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return fallback, fmt.Errorf("argument %q is not a string as expected but %T", key, idate)
	}
	date, err := warera.ParseDate(sdate)
	if err != nil {
		return fallback, fmt.Errorf("argument %q must be a valid date, got %q. Below is the doc about the date format\n\n%s", key, sdate, must(docs.GetTopic("dates")))
	}
	return date, nil
}

// analysisMarkdown renders the rollup for the model to read.
func analysisMarkdown(a *warera.Analysis, from, to warera.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis %s to %s\n\n", from, to)
	fmt.Fprintf(&b, "- Transactions: %d\n", a.Count)
	fmt.Fprintf(&b, "- Bought: %s\n", a.TotalBuy.StringFixed(2))
	fmt.Fprintf(&b, "- Sold: %s\n", a.TotalSell.StringFixed(2))
	fmt.Fprintf(&b, "- Net profit: %s\n", a.NetProfit.StringFixed(2))

	for _, section := range []struct {
		title   string
		buckets map[string]*warera.Bucket
	}{
		{"By resource", a.ByItem},
		{"By category", a.ByType},
	} {
		if len(section.buckets) == 0 {
			continue
		}
		names := make([]string, 0, len(section.buckets))
		for name := range section.buckets {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(&b, "\n## %s\n\n", section.title)
		fmt.Fprintln(&b, "| Name | Count | Bought | Buy total | Sold | Sell total |")
		fmt.Fprintln(&b, "|---|---:|---:|---:|---:|---:|")
		for _, name := range names {
			bucket := section.buckets[name]
			fmt.Fprintf(&b, "| %s | %d | %.0f | %s | %.0f | %s |\n",
				bucket.Name, bucket.Count,
				bucket.BuyQty, bucket.BuyTotal.StringFixed(2),
				bucket.SellQty, bucket.SellTotal.StringFixed(2))
		}
	}
	return b.String()
}
