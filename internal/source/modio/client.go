package modio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"modman/internal/domain"
)

const defaultBaseURL = "https://api.mod.io/v1"

// Client wraps the mod.io REST API v1
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new mod.io API client
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// IsAuthenticated returns true if an API key is configured
func (c *Client) IsAuthenticated() bool {
	return c.apiKey != ""
}

// doRequest performs a GET with the api_key query parameter
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) (err error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing response body: %w", cerr)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: mod.io rejected the API key (%s)", domain.ErrAuthRequired, apiMessage(resp.Body))
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrUnresolvableSource, apiMessage(resp.Body))
	default:
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func apiMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 10*1024))
	if err != nil || len(data) == 0 {
		return "no details"
	}
	var e errorResponse
	if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return string(data)
}

// GetMod fetches a mod by its game and mod name ids (the slugs in a mod page URL)
func (c *Client) GetMod(ctx context.Context, gameNameID, modNameID string) (*Mod, error) {
	path := fmt.Sprintf("/games/@%s/mods/@%s", url.PathEscape(gameNameID), url.PathEscape(modNameID))

	var mod Mod
	if err := c.doRequest(ctx, path, nil, &mod); err != nil {
		return nil, fmt.Errorf("getting mod %s/%s: %w", gameNameID, modNameID, err)
	}
	return &mod, nil
}

// Ping makes the cheapest authenticated call, used to validate a key
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("_limit", "1")

	var out json.RawMessage
	return c.doRequest(ctx, "/games", params, &out)
}
