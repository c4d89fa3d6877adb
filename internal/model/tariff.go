package model

import "time"

// Tariffs are the commercial parameters of the service.
type Tariffs struct {
	SendFeePercent      float64            `yaml:"send_fee_percent"`
	WithdrawFeePercent  float64            `yaml:"withdraw_fee_percent"`
	CryptoSpreadPercent float64            `yaml:"crypto_spread_percent"`
	Deposit             Limits             `yaml:"deposit"`
	Withdraw            Limits             `yaml:"withdraw"`
	NetworkFees         map[string]int64   `yaml:"network_fees"`
	Rates               map[string]float64 `yaml:"rates"`
	AgentListSize       int                `yaml:"agent_list_size"`
	CodeValidity        time.Duration      `yaml:"code_validity"`
}

// Limits bound an amount in local currency.
type Limits struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// Contains reports whether amount lies within the limits.
func (l Limits) Contains(amount int64) bool {
	return amount >= l.Min && amount <= l.Max
}

// DefaultTariffs returns the tariffs used when no tariff file is configured.
func DefaultTariffs() Tariffs {
	return Tariffs{
		SendFeePercent:      1,
		WithdrawFeePercent:  2,
		CryptoSpreadPercent: 2.5,
		Deposit:             Limits{Min: 1_000, Max: 5_000_000},
		Withdraw:            Limits{Min: 1_000, Max: 2_000_000},
		NetworkFees: map[string]int64{
			AssetBTC:  10,
			AssetUSDC: 1,
		},
		Rates: map[string]float64{
			AssetBTC:  150_000_000,
			AssetUSDC: 3_700,
		},
		AgentListSize: 5,
		CodeValidity:  24 * time.Hour,
	}
}
