package source

import (
	"context"
	"strings"

	"modman/internal/domain"
)

// Resolver turns a user-supplied mod page URL into a downloadable file
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*domain.ResolvedFile, error)
}

// Source is a remote mod repository that recognizes its own URLs
type Source interface {
	Resolver

	// Identity
	ID() string
	Name() string

	// Matches reports whether rawURL points at this source
	Matches(rawURL string) bool
}

// KeyValidator is implemented by sources that can check an API key
type KeyValidator interface {
	ValidateKey(ctx context.Context) error
}

// NormalizeURL trims whitespace and collapses doubled slashes in a pasted
// URL while keeping the scheme separator intact.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	scheme := ""
	if i := strings.Index(u, "://"); i >= 0 {
		scheme, u = u[:i+3], u[i+3:]
	}
	for strings.Contains(u, "//") {
		u = strings.ReplaceAll(u, "//", "/")
	}
	return scheme + u
}
