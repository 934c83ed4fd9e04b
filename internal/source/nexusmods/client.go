package nexusmods

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"modman/internal/domain"

	"github.com/hasura/go-graphql-client"
)

const (
	defaultBaseURL = "https://api.nexusmods.com"
	graphqlPath    = "/v2/graphql"
)

// Client wraps the NexusMods REST v1 and GraphQL v2 APIs
type Client struct {
	gql        *graphql.Client
	httpClient *http.Client // carries the apikey header
	apiKey     string
	baseURL    string
}

// NewClient creates a new NexusMods API client
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// Create transport that adds API key header
	transport := &apiKeyTransport{
		base:   httpClient.Transport,
		apiKey: apiKey,
	}
	authedClient := &http.Client{Transport: transport, Timeout: httpClient.Timeout}

	c := &Client{
		httpClient: authedClient,
		apiKey:     apiKey,
	}
	c.setBaseURL(defaultBaseURL)
	return c
}

func (c *Client) setBaseURL(base string) {
	c.baseURL = base
	c.gql = graphql.NewClient(base+graphqlPath, c.httpClient)
}

type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.apiKey != "" {
		req = req.Clone(req.Context())
		req.Header.Set("apikey", t.apiKey)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// IsAuthenticated returns true if an API key is configured
func (c *Client) IsAuthenticated() bool {
	return c.apiKey != ""
}

// doRequest performs a REST GET against the v1 API
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
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
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: NexusMods denied access: %s", domain.ErrAuthRequired, string(body))
	case http.StatusNotFound:
		return fmt.Errorf("%w: resource not found", domain.ErrUnresolvableSource)
	default:
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*1024)) // Limit error body to 10KB
		if readErr != nil {
			return fmt.Errorf("API error (status %d); reading body: %w", resp.StatusCode, readErr)
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// GetGame fetches a game by its URL domain name (e.g. "skyrimspecialedition")
func (c *Client) GetGame(ctx context.Context, domainName string) (*GameData, error) {
	var game GameData
	if err := c.doRequest(ctx, "/v1/games/"+domainName+".json", &game); err != nil {
		return nil, fmt.Errorf("getting game %s: %w", domainName, err)
	}
	return &game, nil
}

// GetModFiles fetches the files of a mod
func (c *Client) GetModFiles(ctx context.Context, gameID, modID int) ([]FileData, error) {
	var query struct {
		ModFiles []FileData `graphql:"modFiles(modId: $modId, gameId: $gameId)"`
	}

	variables := map[string]interface{}{
		"gameId": graphql.ID(strconv.Itoa(gameID)),
		"modId":  graphql.ID(strconv.Itoa(modID)),
	}

	if err := c.gql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("querying mod files: %w", err)
	}

	return query.ModFiles, nil
}

// GetDownloadLinks fetches CDN links for a file. Non-premium accounts get 403.
func (c *Client) GetDownloadLinks(ctx context.Context, domainName string, modID, fileID int) ([]DownloadLink, error) {
	path := fmt.Sprintf("/v1/games/%s/mods/%d/files/%d/download_link.json", domainName, modID, fileID)

	var links []DownloadLink
	if err := c.doRequest(ctx, path, &links); err != nil {
		return nil, fmt.Errorf("getting download links: %w", err)
	}
	return links, nil
}

// ValidateKey checks the configured API key
func (c *Client) ValidateKey(ctx context.Context) error {
	var user struct {
		UserID int    `json:"user_id"`
		Name   string `json:"name"`
	}
	return c.doRequest(ctx, "/v1/users/validate.json", &user)
}
