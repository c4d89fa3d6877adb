package model

import (
	"context"
	"time"
)

// RateProvider quotes exchange rates.
type RateProvider interface {
	Rate(ctx context.Context, asset, currency string) (ExchangeRate, error)
}

// ExchangeRate is the local currency price of one whole unit of an asset.
type ExchangeRate struct {
	Asset       string
	Currency    string
	Rate        float64
	LastUpdated time.Time
	Source      string
}
