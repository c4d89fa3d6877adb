// Package rates quotes exchange rates.
package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const staticSource = "tariff"

var _ model.RateProvider = (*Static)(nil)

// Static quotes the fixed rates of the tariff file in a single local currency.
type Static struct {
	currency string
	rates    map[string]float64
	updated  time.Time
}

// NewStatic creates new Static instance. updated is reported as the quote time.
func NewStatic(currency string, rates map[string]float64, updated time.Time) *Static {
	return &Static{
		currency: currency,
		rates:    rates,
		updated:  updated,
	}
}

// Rate returns the local currency price of one unit of asset.
func (s *Static) Rate(_ context.Context, asset, currency string) (model.ExchangeRate, error) {
	rate, ok := s.rates[asset]
	if !ok || currency != s.currency {
		return model.ExchangeRate{}, fmt.Errorf("no rate for %s/%s: %w", asset, currency, model.ErrNotFound)
	}

	return model.ExchangeRate{
		Asset:       asset,
		Currency:    currency,
		Rate:        rate,
		LastUpdated: s.updated,
		Source:      staticSource,
	}, nil
}
