// Package modio resolves mod.io mod pages to their live download.
package modio

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"modman/internal/domain"
)

// pageURL matches https://mod.io/g/<game>/m/<mod>, ignoring anything after the mod slug.
var pageURL = regexp.MustCompile(`^https?://(?:www\.)?mod\.io/g/([^/?#]+)/m/([^/?#]+)`)

// ModIO implements source.Source for mod.io
type ModIO struct {
	client *Client
}

// New creates a new mod.io source
func New(httpClient *http.Client, apiKey string) *ModIO {
	return &ModIO{
		client: NewClient(httpClient, apiKey),
	}
}

// ID returns the source identifier
func (m *ModIO) ID() string {
	return "modio"
}

// Name returns the display name
func (m *ModIO) Name() string {
	return "mod.io"
}

// ParseURL extracts the game and mod slugs from a mod page URL
func ParseURL(rawURL string) (game, mod string, ok bool) {
	match := pageURL.FindStringSubmatch(rawURL)
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}

// Matches reports whether rawURL is a mod.io mod page
func (m *ModIO) Matches(rawURL string) bool {
	_, _, ok := ParseURL(rawURL)
	return ok
}

// Resolve looks up the mod's live file
func (m *ModIO) Resolve(ctx context.Context, rawURL string) (*domain.ResolvedFile, error) {
	game, mod, ok := ParseURL(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: expected https://mod.io/g/<game>/m/<mod>, got %q", domain.ErrUnresolvableSource, rawURL)
	}
	if !m.client.IsAuthenticated() {
		return nil, fmt.Errorf("%w: set MODIO_API_KEY or run 'modman auth login modio'", domain.ErrAuthRequired)
	}

	data, err := m.client.GetMod(ctx, game, mod)
	if err != nil {
		return nil, err
	}

	f := data.Modfile
	if f == nil || f.ID == 0 || f.Download.BinaryURL == "" {
		return nil, fmt.Errorf("%w: %s has no downloadable file", domain.ErrFileNotAvailable, data.Name)
	}

	return &domain.ResolvedFile{
		DownloadURL: f.Download.BinaryURL,
		FileName:    f.Filename,
		Size:        f.Filesize,
	}, nil
}

// ValidateKey checks the configured API key against the API
func (m *ModIO) ValidateKey(ctx context.Context) error {
	if !m.client.IsAuthenticated() {
		return domain.ErrAuthRequired
	}
	return m.client.Ping(ctx)
}
