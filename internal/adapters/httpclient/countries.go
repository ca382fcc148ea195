package httpclient

import (
	"context"
	"fmt"

	"countryfx/internal/domain"
)

func (c *SourceClient) FetchCountries(ctx context.Context) ([]domain.RawCountry, error) {
	var countries []domain.RawCountry
	if err := c.getJSON(ctx, c.countriesURL, &countries); err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	if countries == nil {
		return nil, fmt.Errorf("fetch countries: %w: payload is not a JSON array", domain.ErrSourceUnavailable)
	}
	return countries, nil
}
