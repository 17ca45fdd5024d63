package trpc

// This file contains the typed procedures the analytics library consumes.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nroux/warera"
)

// The Client implements the library's remote interfaces.
var (
	_ warera.TransactionFetcher = (*Client)(nil)
	_ warera.Lister             = (*Client)(nil)
	_ warera.PriceGetter        = (*Client)(nil)
	_ warera.ProfileFetcher     = (*Client)(nil)
)

// Transactions fetches one page of the user's transaction feed, newest first.
func (c *Client) Transactions(ctx context.Context, q warera.TransactionQuery) (warera.TransactionPage, error) {
	params := map[string]any{
		"userId": q.UserID,
		"limit":  q.Limit,
	}
	if len(q.Types) > 0 {
		params["transactionType"] = q.Types
	}
	if q.Cursor != "" {
		params["cursor"] = q.Cursor
	}

	raw, err := c.Call(ctx, "transaction.getPaginatedTransactions", params)
	if err != nil {
		return warera.TransactionPage{}, err
	}

	var page struct {
		Items      []warera.Transaction `json:"items"`
		NextCursor string               `json:"nextCursor"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return warera.TransactionPage{}, fmt.Errorf("decoding transaction page: %w", err)
	}
	return warera.TransactionPage{Items: page.Items, NextCursor: page.NextCursor}, nil
}

// Regions fetches the bulk region table. The procedure returns an object
// keyed by region id; only the values matter here.
func (c *Client) Regions(ctx context.Context) ([]warera.Region, error) {
	raw, err := c.Call(ctx, "region.getRegionsObject", nil)
	if err != nil {
		return nil, err
	}

	var obj map[string]struct {
		ID      string `json:"_id"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Deposit *struct {
			Type         string    `json:"type"`
			BonusPercent float64   `json:"bonusPercent"`
			EndsAt       time.Time `json:"endsAt"`
		} `json:"deposit"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decoding regions: %w", err)
	}

	regions := make([]warera.Region, 0, len(obj))
	for _, r := range obj {
		region := warera.Region{ID: r.ID, Name: r.Name, CountryID: r.Country}
		if r.Deposit != nil {
			region.DepositItem = r.Deposit.Type
			region.DepositBonus = r.Deposit.BonusPercent / 100
			region.DepositEndsAt = r.Deposit.EndsAt
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// Countries fetches the bulk country table.
func (c *Client) Countries(ctx context.Context) ([]warera.Country, error) {
	raw, err := c.Call(ctx, "country.getAllCountries", nil)
	if err != nil {
		return nil, err
	}

	var list []struct {
		ID                 string `json:"_id"`
		Name               string `json:"name"`
		SpecializedItem    string `json:"specializedItem"`
		StrategicResources struct {
			Bonuses struct {
				ProductionPercent float64 `json:"productionPercent"`
			} `json:"bonuses"`
		} `json:"strategicResources"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding countries: %w", err)
	}

	countries := make([]warera.Country, 0, len(list))
	for _, co := range list {
		countries = append(countries, warera.Country{
			ID:              co.ID,
			Name:            co.Name,
			Bonus:           co.StrategicResources.Bonuses.ProductionPercent / 100,
			SpecializedItem: co.SpecializedItem,
		})
	}
	return countries, nil
}

// UserLite fetches the target user's lightweight profile.
func (c *Client) UserLite(ctx context.Context, userID string) (warera.Profile, error) {
	raw, err := c.Call(ctx, "user.getUserLite", map[string]any{"userId": userID})
	if err != nil {
		return warera.Profile{}, err
	}

	var u struct {
		Username string `json:"username"`
		Skills   struct {
			Production struct {
				Value float64 `json:"value"`
			} `json:"production"`
			Energy struct {
				HourlyBarRegen float64 `json:"hourlyBarRegen"`
			} `json:"energy"`
		} `json:"skills"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return warera.Profile{}, fmt.Errorf("decoding user %s: %w", userID, err)
	}
	if u.Username == "" {
		return warera.Profile{}, fmt.Errorf("user %s not found", userID)
	}

	return warera.Profile{
		Name:                u.Username,
		Production:          u.Skills.Production.Value,
		EstimatedWorkPerDay: u.Skills.Energy.HourlyBarRegen * 24 / 10,
	}, nil
}

// TopOrderPrice returns the best sell-order price for an item, 0 when the
// order book is empty.
func (c *Client) TopOrderPrice(ctx context.Context, itemCode string) (float64, error) {
	raw, err := c.Call(ctx, "tradingOrder.getTopOrders", map[string]any{"itemCode": itemCode, "limit": 2})
	if err != nil {
		return 0, err
	}

	var res struct {
		SellOrders []struct {
			Price float64 `json:"price"`
		} `json:"sellOrders"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, fmt.Errorf("decoding top orders for %s: %w", itemCode, err)
	}
	if len(res.SellOrders) == 0 {
		return 0, nil
	}
	return res.SellOrders[0].Price, nil
}
