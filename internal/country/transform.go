package country

import (
	"fmt"
	"math"
	"strings"
	"time"

	"countryfx/internal/domain"

	"github.com/shopspring/decimal"
)

// ExtractCurrencyCode returns the first listed currency code. Secondary
// currencies are ignored.
func ExtractCurrencyCode(currencies []domain.RawCurrency) *string {
	if len(currencies) == 0 {
		return nil
	}
	code := strings.TrimSpace(currencies[0].Code)
	if code == "" {
		return nil
	}
	return &code
}

// EstimateGDP returns population * multiplier + rate rounded to 2 places.
// A known-missing currency yields exactly 0; a missing population or an
// unresolved rate yields NULL.
func EstimateGDP(population domain.Numeric, rate domain.ExchangeRate, m Multiplier) decimal.NullDecimal {
	if rate.Kind == domain.RateAbsent {
		return decimal.NewNullDecimal(decimal.Zero)
	}
	if !population.Valid || population.Value.IsZero() || rate.Kind != domain.RatePresent {
		return decimal.NullDecimal{}
	}
	gdp := population.Value.Mul(decimal.NewFromInt(m.Next())).Add(rate.Value).Round(2)
	return decimal.NewNullDecimal(gdp)
}

var maxPopulation = decimal.NewFromInt(math.MaxInt64)

// wholePopulation truncates fractional populations so the stored value and the
// GDP input agree.
func wholePopulation(n domain.Numeric) (domain.Numeric, error) {
	if !n.Valid {
		return n, nil
	}
	if n.Value.IsNegative() {
		return domain.Numeric{}, fmt.Errorf("has negative population %s", n.Value)
	}
	whole := n.Value.Truncate(0)
	if whole.GreaterThan(maxPopulation) {
		return domain.Numeric{}, fmt.Errorf("has out-of-range population %s", n.Value)
	}
	return domain.Numeric{Value: whole, Valid: true}, nil
}

type Transformer struct {
	multiplier Multiplier
}

func NewTransformer(m Multiplier) *Transformer {
	if m == nil {
		m = NewRandomMultiplier(0)
	}
	return &Transformer{multiplier: m}
}

// Transform builds the persisted record for one raw country. successful
// reports whether the currency resolved to a non-zero rate.
func (t *Transformer) Transform(raw domain.RawCountry, rates domain.RateTable, refreshedAt time.Time) (domain.Country, bool, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return domain.Country{}, false, fmt.Errorf("%w: missing name", domain.ErrRecordTransform)
	}
	population, err := wholePopulation(raw.Population)
	if err != nil {
		return domain.Country{}, false, fmt.Errorf("%w: %q %v", domain.ErrRecordTransform, name, err)
	}

	code := ExtractCurrencyCode(raw.Currencies)
	rate := rates.Lookup(code)

	c := domain.Country{
		Name:            name,
		Capital:         nonBlank(raw.Capital),
		Region:          nonBlank(raw.Region),
		EstimatedGDP:    EstimateGDP(population, rate, t.multiplier),
		FlagURL:         nonBlank(raw.Flag),
		LastRefreshedAt: refreshedAt,
	}
	if population.Valid {
		pop := population.Value.IntPart()
		c.Population = &pop
	}
	// code and rate are stored together or not at all
	if rate.Kind == domain.RatePresent {
		c.CurrencyCode = code
		c.ExchangeRate = decimal.NewNullDecimal(rate.Value)
	}

	successful := rate.Kind == domain.RatePresent && !rate.Value.IsZero()
	return c, successful, nil
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
