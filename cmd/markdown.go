package cmd

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

// gameCurrency is the in-game currency code. It is not an ISO code, so it is
// registered with go-money before first use.
const gameCurrency = "WRC"

func init() {
	money.AddCurrency(gameCurrency, "₩", "$1", ".", ",", 2)
}

// formatMoney renders an exact amount in the game currency.
func formatMoney(d decimal.Decimal) string {
	cents := d.Round(2).Shift(2).IntPart()
	return money.New(cents, gameCurrency).Display()
}

// formatPrice renders a raw API price in the game currency.
func formatPrice(p float64) string {
	return formatMoney(decimal.NewFromFloat(p))
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
