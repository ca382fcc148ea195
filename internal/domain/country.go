package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawCountry is one element of the country source payload, as fetched.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    *string       `json:"capital"`
	Region     *string       `json:"region"`
	Population Numeric       `json:"population"`
	Flag       *string       `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

type RawCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Numeric is a loosely typed JSON scalar. A value that does not coerce to a
// number decodes as invalid instead of failing the whole payload.
type Numeric struct {
	Value decimal.Decimal
	Valid bool
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	n.Value, n.Valid = decimal.Zero, false
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	d, err := decimal.NewFromString(strings.Trim(s, `"`))
	if err != nil {
		return nil
	}
	n.Value, n.Valid = d, true
	return nil
}

// NumericOf builds a valid Numeric, mostly for tests and fixtures.
func NumericOf(v int64) Numeric {
	return Numeric{Value: decimal.NewFromInt(v), Valid: true}
}

// Country is the persisted, denormalized record. Name is the natural key.
type Country struct {
	Name            string              `json:"name"`
	Capital         *string             `json:"capital"`
	Region          *string             `json:"region"`
	Population      *int64              `json:"population"`
	CurrencyCode    *string             `json:"currency_code"`
	ExchangeRate    decimal.NullDecimal `json:"exchange_rate"`
	EstimatedGDP    decimal.NullDecimal `json:"estimated_gdp"`
	FlagURL         *string             `json:"flag_url"`
	LastRefreshedAt time.Time           `json:"last_refreshed_at"`
}

// CountryGDP is a projection used by the refresh summary artifact.
type CountryGDP struct {
	Name         string
	EstimatedGDP decimal.NullDecimal
}
