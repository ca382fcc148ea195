package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"countryfx/internal/adapters"
	"countryfx/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const DefaultTimeout = 10 * time.Second

// SourceClient fetches raw country data and exchange-rate tables from the two
// external sources. It never retries; callers decide what to do with ErrSourceUnavailable.
type SourceClient struct {
	http         *http.Client
	countriesURL string
	ratesURL     string
	cache        adapters.RateCache
	group        singleflight.Group
	clock        clockwork.Clock
}

func NewSourceClient(httpClient *http.Client, countriesURL, ratesURL string, cache adapters.RateCache, clock clockwork.Clock) *SourceClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SourceClient{
		http:         httpClient,
		countriesURL: countriesURL,
		ratesURL:     ratesURL,
		cache:        cache,
		clock:        clock,
	}
}

// getJSON performs one GET and decodes a 2xx body into v.
func (c *SourceClient) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, resp.Status)
	}

	if err = sonic.ConfigStd.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrSourceUnavailable, err)
	}
	return nil
}
