// Package curseforge resolves CurseForge project pages to a download.
package curseforge

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"modman/internal/domain"
)

// pageURL matches https://www.curseforge.com/<game>/<class>/<mod>, with an
// optional /files/<id> pinning one file.
var pageURL = regexp.MustCompile(`^https?://(?:www\.)?curseforge\.com/([^/?#]+)/([^/?#]+)/([^/?#]+)(?:/files/(\d+))?`)

// PageRef is a parsed CurseForge project URL
type PageRef struct {
	Game   string
	Class  string
	Mod    string
	FileID int // 0 means the project's main file
}

// CurseForge implements source.Source for CurseForge
type CurseForge struct {
	client *Client
}

// New creates a new CurseForge source
func New(httpClient *http.Client, apiKey string) *CurseForge {
	return &CurseForge{
		client: NewClient(httpClient, apiKey),
	}
}

// ID returns the source identifier
func (c *CurseForge) ID() string {
	return "curseforge"
}

// Name returns the display name
func (c *CurseForge) Name() string {
	return "CurseForge"
}

// ParseURL splits a project URL into its parts
func ParseURL(rawURL string) (PageRef, bool) {
	m := pageURL.FindStringSubmatch(rawURL)
	if m == nil {
		return PageRef{}, false
	}
	ref := PageRef{Game: m[1], Class: m[2], Mod: m[3]}
	if m[4] != "" {
		id, err := strconv.Atoi(m[4])
		if err != nil {
			return PageRef{}, false
		}
		ref.FileID = id
	}
	return ref, true
}

// Matches reports whether rawURL is a CurseForge project page
func (c *CurseForge) Matches(rawURL string) bool {
	_, ok := ParseURL(rawURL)
	return ok
}

// Resolve looks up the pinned file, or the project's main file
func (c *CurseForge) Resolve(ctx context.Context, rawURL string) (*domain.ResolvedFile, error) {
	ref, ok := ParseURL(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: expected https://www.curseforge.com/<game>/<class>/<mod>, got %q", domain.ErrUnresolvableSource, rawURL)
	}
	if !c.client.IsAuthenticated() {
		return nil, fmt.Errorf("%w: set CURSEFORGE_API_KEY or run 'modman auth login curseforge'", domain.ErrAuthRequired)
	}

	game, err := c.client.FindGame(ctx, ref.Game)
	if err != nil {
		return nil, err
	}
	mod, err := c.client.FindModBySlug(ctx, game.ID, ref.Mod)
	if err != nil {
		return nil, err
	}

	fileID := ref.FileID
	if fileID == 0 {
		fileID = mod.MainFileID
	}
	if fileID == 0 {
		return nil, fmt.Errorf("%w: %s has no main file", domain.ErrFileNotAvailable, mod.Name)
	}

	file, err := c.client.GetModFile(ctx, mod.ID, fileID)
	if err != nil {
		return nil, err
	}

	downloadURL := file.DownloadURL
	if downloadURL == "" {
		if downloadURL, err = c.client.GetDownloadURL(ctx, mod.ID, fileID); err != nil {
			return nil, err
		}
	}
	if downloadURL == "" {
		return nil, fmt.Errorf("%w: %s file %d has no download URL", domain.ErrFileNotAvailable, mod.Name, fileID)
	}

	return &domain.ResolvedFile{
		DownloadURL: downloadURL,
		FileName:    file.FileName,
		Size:        file.FileLength,
	}, nil
}

// ValidateKey checks the configured API key by listing games
func (c *CurseForge) ValidateKey(ctx context.Context) error {
	if !c.client.IsAuthenticated() {
		return domain.ErrAuthRequired
	}
	var out PaginatedResponse[[]Game]
	return c.client.doRequest(ctx, "/v1/games?pageSize=1", &out)
}
