package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is the Esri COVID-19 cases feature layer, queried for every row and field.
const DefaultURL = "https://services1.arcgis.com/0MSEUqKaxRlEPj5g/arcgis/rest/services/Coronavirus_2019_nCoV_Cases/FeatureServer/1/query?where=1%3D1&outFields=*&outSR=4326&f=json"

// ErrProvider signals that the feature service answered with an error document.
var ErrProvider = errors.New("arcgis: provider returned an error")

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines settings for the ArcGIS client.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client queries the national totals feature layer.
type Client struct {
	url        string
	httpClient HTTPClient
}

// New creates an ArcGIS client.
func New(httpClient HTTPClient, cfg Config) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}
	return &Client{url: url, httpClient: httpClient}
}

// Attributes is the attribute bag carried by each feature. Pointer fields are nil when the
// service omits the value or sends null.
type Attributes struct {
	CountryRegion *string `json:"Country_Region"`
	ProvinceState *string `json:"Province_State"`
	Confirmed     *int64  `json:"Confirmed"`
	Deaths        *int64  `json:"Deaths"`
	Recovered     *int64  `json:"Recovered"`
	LastUpdate    *int64  `json:"Last_Update"` // epoch milliseconds
}

// Feature is one record of the query response.
type Feature struct {
	Attributes Attributes `json:"attributes"`
}

type queryResponse struct {
	Features []Feature     `json:"features"`
	Error    *serviceError `json:"error"`
}

type serviceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FetchNationalSnapshot returns every feature of the layer, in service order.
func (c *Client) FetchNationalSnapshot(ctx context.Context) ([]Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("arcgis status %d: %s", resp.StatusCode, string(body))
	}
	return decodeQueryResponse(resp.Body)
}

func decodeQueryResponse(body io.Reader) ([]Feature, error) {
	var parsed queryResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: %d %s", ErrProvider, parsed.Error.Code, parsed.Error.Message)
	}
	if parsed.Features == nil {
		return nil, errors.New("arcgis: response has no features array")
	}
	return parsed.Features, nil
}
