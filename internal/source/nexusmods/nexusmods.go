// Package nexusmods resolves NexusMods mod pages to a download link.
package nexusmods

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"modman/internal/domain"
)

// pageURL matches https://www.nexusmods.com/<game>/mods/<id>
var pageURL = regexp.MustCompile(`^https?://(?:www\.)?nexusmods\.com/([^/?#]+)/mods/(\d+)`)

// NexusMods implements source.Source for NexusMods
type NexusMods struct {
	client *Client
}

// New creates a new NexusMods source
func New(httpClient *http.Client, apiKey string) *NexusMods {
	return &NexusMods{
		client: NewClient(httpClient, apiKey),
	}
}

// ID returns the source identifier
func (n *NexusMods) ID() string {
	return "nexusmods"
}

// Name returns the display name
func (n *NexusMods) Name() string {
	return "Nexus Mods"
}

// PageRef identifies a mod page and, optionally, one of its files
type PageRef struct {
	Game   string
	ModID  int
	FileID int // 0 when the URL does not pin a file
}

// ParseURL extracts the game domain, mod id and optional file_id query parameter
func ParseURL(rawURL string) (PageRef, bool) {
	match := pageURL.FindStringSubmatch(rawURL)
	if match == nil {
		return PageRef{}, false
	}
	modID, err := strconv.Atoi(match[2])
	if err != nil {
		return PageRef{}, false
	}
	ref := PageRef{Game: match[1], ModID: modID}
	if u, err := url.Parse(rawURL); err == nil {
		if id, err := strconv.Atoi(u.Query().Get("file_id")); err == nil {
			ref.FileID = id
		}
	}
	return ref, true
}

// Matches reports whether rawURL is a NexusMods mod page
func (n *NexusMods) Matches(rawURL string) bool {
	_, ok := ParseURL(rawURL)
	return ok
}

// Resolve picks the file to download (the pinned file_id, else the primary
// file, else the newest MAIN file) and asks for its download link.
func (n *NexusMods) Resolve(ctx context.Context, rawURL string) (*domain.ResolvedFile, error) {
	ref, ok := ParseURL(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: expected https://www.nexusmods.com/<game>/mods/<id>, got %q", domain.ErrUnresolvableSource, rawURL)
	}
	if !n.client.IsAuthenticated() {
		return nil, fmt.Errorf("%w: set NEXUSMODS_API_KEY or run 'modman auth login nexusmods'", domain.ErrAuthRequired)
	}

	game, err := n.client.GetGame(ctx, ref.Game)
	if err != nil {
		return nil, err
	}

	files, err := n.client.GetModFiles(ctx, game.ID, ref.ModID)
	if err != nil {
		return nil, err
	}

	file, ok := pickFile(files, ref.FileID)
	if !ok {
		return nil, fmt.Errorf("%w: mod %d has no main file", domain.ErrFileNotAvailable, ref.ModID)
	}

	links, err := n.client.GetDownloadLinks(ctx, ref.Game, ref.ModID, file.FileID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: no download links for file %d", domain.ErrFileNotAvailable, file.FileID)
	}

	size, _ := strconv.ParseInt(file.SizeInBytes, 10, 64)
	return &domain.ResolvedFile{
		DownloadURL: links[0].URI,
		FileName:    file.URI,
		Size:        size,
	}, nil
}

// ValidateKey checks the configured API key against the API
func (n *NexusMods) ValidateKey(ctx context.Context) error {
	if !n.client.IsAuthenticated() {
		return domain.ErrAuthRequired
	}
	return n.client.ValidateKey(ctx)
}

func pickFile(files []FileData, fileID int) (FileData, bool) {
	if fileID > 0 {
		for _, f := range files {
			if f.FileID == fileID {
				return f, true
			}
		}
		return FileData{}, false
	}

	for _, f := range files {
		if f.Primary > 0 {
			return f, true
		}
	}

	var (
		best  FileData
		found bool
	)
	for _, f := range files {
		if f.Category != "MAIN" {
			continue
		}
		if !found || f.Date > best.Date {
			best, found = f, true
		}
	}
	return best, found
}
