// Package restcountries provides a client for the REST Countries API
// (https://restcountries.com).
package restcountries

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mapmania/geoprep/internal/resilience"
)

// Fields is the projection requested from the API.
const Fields = "cca2,region,name,translations,capital"

// Client looks up countries by ISO 3166-1 alpha-2 code.
type Client interface {
	// Lookup fetches the given codes in batches. Batches that keep failing are
	// reported in Result.Failed instead of aborting the lookup.
	Lookup(ctx context.Context, codes []string) (*Result, error)
}

// Result is the outcome of a Lookup.
type Result struct {
	// Countries is sorted by code.
	Countries []Country
	// Failed lists the codes of batches that could not be fetched, sorted.
	Failed []string
}

// Country is the subset of a REST Countries record geoprep uses.
type Country struct {
	CCA2         string                 `json:"cca2"`
	Region       string                 `json:"region"`
	Name         Name                   `json:"name"`
	Translations map[string]Translation `json:"translations"`
	Capital      []string               `json:"capital"`
}

// Name is the English name block.
type Name struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

// Translation is one entry of the translations block, keyed by ISO 639-3.
type Translation struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

var regionContinents = map[string]string{
	"Africa":    "AF",
	"Americas":  "AM",
	"Asia":      "AS",
	"Europe":    "EU",
	"Oceania":   "OC",
	"Antarctic": "AN",
}

// ContinentCode maps the API region to a two-letter continent code, or ""
// for an unknown region.
func (c Country) ContinentCode() string {
	return regionContinents[c.Region]
}

// EnglishName is the common name, falling back to the code.
func (c Country) EnglishName() string {
	if c.Name.Common != "" {
		return c.Name.Common
	}
	return c.CCA2
}

// FrenchName is the French common name, falling back to EnglishName.
func (c Country) FrenchName() string {
	if t, ok := c.Translations["fra"]; ok && t.Common != "" {
		return t.Common
	}
	return c.EnglishName()
}

// CapitalName is the first listed capital, or "".
func (c Country) CapitalName() string {
	if len(c.Capital) == 0 {
		return ""
	}
	return c.Capital[0]
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second across all batches.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBatchSize sets how many codes go into one request.
func WithBatchSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithConcurrency sets how many batches are in flight at once.
func WithConcurrency(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithBackoff sets the retry policy for each batch.
func WithBackoff(b resilience.Backoff) Option {
	return func(c *httpClient) {
		c.backoff = b
	}
}

type httpClient struct {
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	batchSize   int
	concurrency int
	backoff     resilience.Backoff
}

// NewClient creates a REST Countries client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://restcountries.com/v3.1",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:     rate.NewLimiter(5, 5),
		batchSize:   20,
		concurrency: 4,
		backoff:     resilience.DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// normalizeCodes upper-cases codes and drops blanks and repeats.
func normalizeCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	var out []string
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func batches(codes []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(codes); start += size {
		end := min(start+size, len(codes))
		out = append(out, codes[start:end])
	}
	return out
}

func (c *httpClient) Lookup(ctx context.Context, codes []string) (*Result, error) {
	log := zap.L().With(zap.String("component", "restcountries"))

	groups := batches(normalizeCodes(codes), c.batchSize)
	found := make([][]Country, len(groups))
	failed := make([]bool, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, batch := range groups {
		g.Go(func() error {
			countries, err := resilience.Retry(gctx, c.backoff, "restcountries.alpha",
				func(ctx context.Context) ([]Country, error) {
					return c.fetchBatch(ctx, batch)
				})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("batch failed", zap.Strings("codes", batch), zap.Error(err))
				failed[i] = true
				return nil
			}
			log.Debug("batch fetched", zap.Int("requested", len(batch)), zap.Int("returned", len(countries)))
			found[i] = countries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "restcountries: lookup")
	}

	res := &Result{}
	seen := make(map[string]bool)
	for i, countries := range found {
		if failed[i] {
			res.Failed = append(res.Failed, groups[i]...)
			continue
		}
		for _, country := range countries {
			if country.CCA2 == "" || seen[country.CCA2] {
				continue
			}
			seen[country.CCA2] = true
			res.Countries = append(res.Countries, country)
		}
	}
	sort.Slice(res.Countries, func(i, j int) bool {
		return res.Countries[i].CCA2 < res.Countries[j].CCA2
	})
	sort.Strings(res.Failed)

	return res, nil
}

// fetchBatch performs one GET /alpha request. A 404 means none of the codes
// exist and yields an empty slice.
func (c *httpClient) fetchBatch(ctx context.Context, codes []string) ([]Country, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "restcountries: rate limit wait")
	}

	q := url.Values{}
	q.Set("codes", strings.Join(codes, ","))
	q.Set("fields", Fields)
	reqURL := c.baseURL + "/alpha?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "restcountries: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "restcountries: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &resilience.StatusError{Service: "restcountries", Code: resp.StatusCode, Body: string(body)}
	}

	var countries []Country
	if err := json.Unmarshal(body, &countries); err != nil {
		return nil, eris.Wrap(err, "restcountries: decode response")
	}
	return countries, nil
}
