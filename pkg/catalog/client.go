package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Client loads the catalog from the sign-up HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the API at baseURL. A nil httpClient gets a
// client with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Load fetches GET /plans and GET /addons in parallel and joins them
func (c *Client) Load(ctx context.Context) (*Catalog, error) {
	var (
		plansResp PlansResponse
		addOns    []AddOn
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, "/plans", &plansResp)
	})
	g.Go(func() error {
		return c.getJSON(gctx, "/addons", &addOns)
	})
	if err := g.Wait(); err != nil {
		return nil, &LoadError{Err: err}
	}

	var defaultID ID
	if len(plansResp.Plans) > 0 && len(plansResp.DefaultPlanID) > 0 {
		defaultID = plansResp.DefaultPlanID[0].Value
	}

	return New(plansResp.Plans, addOns, defaultID), nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to fetch %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
