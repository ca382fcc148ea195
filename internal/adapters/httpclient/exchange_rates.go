package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"countryfx/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

var errUnrecognizedPayload = errors.New("unrecognized exchange-rate payload")

// ratePayload covers every response shape the rate source is known to emit.
type ratePayload struct {
	Result          *string                    `json:"result"`
	Rates           map[string]decimal.Decimal `json:"rates"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
	ConversionRate  json.RawMessage            `json:"conversion_rate"`
	TargetCode      string                     `json:"target_code"`
}

type rateShape int

const (
	shapeUnknown rateShape = iota
	shapeTable
	shapeSingle
)

// rateVariant is the decoded payload reduced to one of the supported shapes.
type rateVariant struct {
	shape  rateShape
	table  map[string]decimal.Decimal
	code   string
	single decimal.Decimal
}

func classify(p ratePayload) (rateVariant, error) {
	if p.Result != nil && *p.Result != "success" {
		return rateVariant{}, fmt.Errorf("api returned non-success result: %s", *p.Result)
	}
	switch {
	case p.Rates != nil:
		return rateVariant{shape: shapeTable, table: p.Rates}, nil
	case p.ConversionRates != nil:
		return rateVariant{shape: shapeTable, table: p.ConversionRates}, nil
	}

	raw := bytes.TrimSpace(p.ConversionRate)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return rateVariant{}, errUnrecognizedPayload
	}
	if raw[0] == '{' {
		var table map[string]decimal.Decimal
		if err := sonic.ConfigStd.Unmarshal(raw, &table); err != nil {
			return rateVariant{}, fmt.Errorf("decode conversion_rate table: %w", err)
		}
		return rateVariant{shape: shapeTable, table: table}, nil
	}

	var single decimal.Decimal
	if err := sonic.ConfigStd.Unmarshal(raw, &single); err != nil {
		return rateVariant{}, fmt.Errorf("decode conversion_rate: %w", err)
	}
	code := strings.TrimSpace(p.TargetCode)
	if code == "" {
		return rateVariant{}, errors.New("conversion_rate without target_code")
	}
	return rateVariant{shape: shapeSingle, code: code, single: single}, nil
}

func (v rateVariant) normalize() domain.RateTable {
	switch v.shape {
	case shapeTable:
		return domain.RateTable(v.table).Clone()
	case shapeSingle:
		return domain.RateTable{v.code: v.single}
	default:
		return nil
	}
}

// FetchExchangeRates returns the rate table for base, serving from the cache
// while it is fresh. Concurrent misses for one base share a single request,
// which runs detached from any one caller and is bounded by the client timeout.
func (c *SourceClient) FetchExchangeRates(ctx context.Context, base string) (domain.RateTable, error) {
	if c.cache != nil {
		if rates, ok := c.cache.Get(base); ok {
			return rates, nil
		}
	}

	ch := c.group.DoChan(base, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sharedTimeout())
		defer cancel()
		return c.fetchExchangeRates(fetchCtx, base)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: fetch exchange rates for %q: %w", domain.ErrSourceUnavailable, base, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.RateTable).Clone(), nil
	}
}

func (c *SourceClient) sharedTimeout() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return DefaultTimeout
}

func (c *SourceClient) fetchExchangeRates(ctx context.Context, base string) (domain.RateTable, error) {
	u, err := url.Parse(c.ratesURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse rates URL: %v", domain.ErrSourceUnavailable, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + url.PathEscape(base)

	var payload ratePayload
	if err = c.getJSON(ctx, u.String(), &payload); err != nil {
		return nil, fmt.Errorf("fetch exchange rates for %q: %w", base, err)
	}

	variant, err := classify(payload)
	if err != nil {
		return nil, fmt.Errorf("fetch exchange rates for %q: %w: %v", base, domain.ErrSourceUnavailable, err)
	}

	rates := variant.normalize()
	if c.cache != nil {
		c.cache.Put(base, rates, c.clock.Now())
	}
	return rates, nil
}
