package domain

import (
	"maps"

	"github.com/shopspring/decimal"
)

// RateTable maps a currency code to its rate against the table's base currency.
type RateTable map[string]decimal.Decimal

type RateKind int

const (
	// RateUnresolved means a currency code exists but the table has no rate for it.
	RateUnresolved RateKind = iota
	// RateAbsent means the country has no currency, so there is nothing to look up.
	RateAbsent
	RatePresent
)

type ExchangeRate struct {
	Kind  RateKind
	Value decimal.Decimal
}

// Lookup resolves the rate for code. A nil code is a known-missing currency.
func (t RateTable) Lookup(code *string) ExchangeRate {
	if code == nil {
		return ExchangeRate{Kind: RateAbsent}
	}
	v, ok := t[*code]
	if !ok {
		return ExchangeRate{Kind: RateUnresolved}
	}
	return ExchangeRate{Kind: RatePresent, Value: v}
}

func (t RateTable) Clone() RateTable {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}
