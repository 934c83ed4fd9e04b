package curseforge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"modman/internal/domain"
)

const (
	defaultBaseURL = "https://api.curseforge.com"
)

// Client wraps the CurseForge REST API v1
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new CurseForge API client
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

// doRequest performs a GET with the x-api-key header
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
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
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: CurseForge API key required", domain.ErrAuthRequired)
	case http.StatusForbidden:
		// On the download-url endpoint a 403 with a valid key means the
		// author disabled third-party distribution.
		if c.apiKey != "" && strings.HasSuffix(path, "/download-url") {
			return fmt.Errorf("%w: the author has disabled third-party downloads", domain.ErrFileNotAvailable)
		}
		return fmt.Errorf("%w: CurseForge rejected the API key", domain.ErrAuthRequired)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s not found", domain.ErrUnresolvableSource, path)
	default:
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*1024))
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

// GetGames fetches all available games with pagination
func (c *Client) GetGames(ctx context.Context) ([]Game, error) {
	const pageSize = 50

	var allGames []Game
	index := 0

	for {
		params := url.Values{}
		params.Set("pageSize", strconv.Itoa(pageSize))
		params.Set("index", strconv.Itoa(index))

		var resp PaginatedResponse[[]Game]
		if err := c.doRequest(ctx, "/v1/games?"+params.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("getting games: %w", err)
		}

		allGames = append(allGames, resp.Data...)

		p := resp.Pagination
		if len(resp.Data) == 0 || p.Index+p.PageSize >= p.TotalCount {
			break
		}

		index += p.PageSize
	}

	return allGames, nil
}

// FindGame returns the game whose slug matches, e.g. "minecraft"
func (c *Client) FindGame(ctx context.Context, slug string) (*Game, error) {
	games, err := c.GetGames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if strings.EqualFold(games[i].Slug, slug) {
			return &games[i], nil
		}
	}
	return nil, fmt.Errorf("%w: unknown CurseForge game %q", domain.ErrUnresolvableSource, slug)
}

// FindModBySlug searches a game for the mod with the exact slug
func (c *Client) FindModBySlug(ctx context.Context, gameID int, slug string) (*Mod, error) {
	params := url.Values{}
	params.Set("gameId", strconv.Itoa(gameID))
	params.Set("slug", slug)
	params.Set("pageSize", "50")

	var resp PaginatedResponse[[]Mod]
	if err := c.doRequest(ctx, "/v1/mods/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("searching mods: %w", err)
	}
	for i := range resp.Data {
		if resp.Data[i].Slug == slug {
			return &resp.Data[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no CurseForge mod with slug %q", domain.ErrUnresolvableSource, slug)
}

// GetModFile fetches a specific file for a mod
func (c *Client) GetModFile(ctx context.Context, modID, fileID int) (*File, error) {
	path := fmt.Sprintf("/v1/mods/%d/files/%d", modID, fileID)

	var resp APIResponse[File]
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("getting mod file: %w", err)
	}
	return &resp.Data, nil
}

// GetDownloadURL fetches the download URL for a mod file
func (c *Client) GetDownloadURL(ctx context.Context, modID, fileID int) (string, error) {
	path := fmt.Sprintf("/v1/mods/%d/files/%d/download-url", modID, fileID)

	var resp StringDownloadURL
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return "", fmt.Errorf("getting download URL: %w", err)
	}
	return resp.Data, nil
}
