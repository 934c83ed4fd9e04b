package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModRecord_Paths(t *testing.T) {
	r := &ModRecord{LocalName: "sub/Cool_P.pak", InstalledPath: "/games/mods", Enabled: true}

	assert.Equal(t, filepath.Join("/games/mods", "sub", "Cool_P.pak"), r.ActivePath())
	assert.Equal(t, filepath.Join("/games/mods", ".disabled", "sub", "Cool_P.pak"), r.DisabledPath())
	assert.Equal(t, r.ActivePath(), r.CurrentPath())

	r.Enabled = false
	assert.Equal(t, r.DisabledPath(), r.CurrentPath())
}

func TestParseMatchMode(t *testing.T) {
	tests := []struct {
		in   string
		want MatchMode
	}{
		{"exact", MatchExact},
		{"contains", MatchContains},
		{"", MatchExact},
		{"bogus", MatchExact},
	}

	for _, tt := range tests {
		got := ParseMatchMode(tt.in)
		if got != tt.want {
			t.Errorf("ParseMatchMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatchMode_String(t *testing.T) {
	assert.Equal(t, "exact", MatchExact.String())
	assert.Equal(t, "contains", MatchContains.String())
	assert.Equal(t, "unknown", MatchMode(42).String())
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "Internal"},
		{"direct", ErrUnknownMod, "UnknownMod"},
		{"wrapped", fmt.Errorf("toggling x: %w", ErrModFileMissing), "ModFileMissing"},
		{"empty wins over extraction", fmt.Errorf("%w: %w", ErrExtractionFailed, ErrEmptyArchive), "EmptyArchive"},
		{"save failure", fmt.Errorf("persist: %w", ErrSaveFailed), "SaveFailed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}
