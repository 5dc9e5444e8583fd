package socrata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultDomain  = "data.cdc.gov"
	DefaultDataset = "9bhg-hcku" // provisional COVID-19 deaths by sex and age
	DefaultLimit   = 1500
)

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines settings for the Socrata client.
type Config struct {
	Domain   string
	Dataset  string
	Limit    int
	AppToken string // optional; public datasets work without one at a lower rate limit
	Timeout  time.Duration
}

// Client reads rows from a Socrata Open Data (SODA) resource.
type Client struct {
	domain     string
	dataset    string
	limit      int
	appToken   string
	httpClient HTTPClient
}

// New creates a Socrata client.
func New(httpClient HTTPClient, cfg Config) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	domain := cfg.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	dataset := cfg.Dataset
	if dataset == "" {
		dataset = DefaultDataset
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{
		domain:     domain,
		dataset:    dataset,
		limit:      limit,
		appToken:   cfg.AppToken,
		httpClient: httpClient,
	}
}

// Row is one record of the age-group deaths dataset. Deaths is kept raw because the
// dataset serves counts as strings and omits them when suppressed.
type Row struct {
	State    string          `json:"state"`
	AgeGroup string          `json:"age_group"`
	Deaths   json.RawMessage `json:"covid_19_deaths"`
}

// Endpoint returns the resource URL including the row limit.
func (c *Client) Endpoint() string {
	params := url.Values{}
	params.Set("$limit", strconv.Itoa(c.limit))
	return fmt.Sprintf("https://%s/resource/%s.json?%s", c.domain, c.dataset, params.Encode())
}

// FetchAgeGroupDeaths returns up to the configured limit of rows, in dataset order.
func (c *Client) FetchAgeGroupDeaths(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("socrata status %d: %s", resp.StatusCode, string(body))
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}
