package core_test

import (
	"testing"

	"modman/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "CoolMod.pak", "CoolMod"},
		{"chunk prefix and suffix", "pakchunk99-Mods_CoolMod_P.pak", "CoolMod"},
		{"case insensitive", "PAKCHUNK5-mods_Loud_p.pak", "Loud"},
		{"suffix only", "Thing_P.utoc", "Thing"},
		{"prefix needs digits", "pakchunk-Mods_X.pak", "pakchunk-Mods_X"},
		{"nested path", "sub/dir/pakchunk1-Mods_Deep_P.ucas", "Deep"},
		{"backslash path", `sub\pakchunk1-Mods_Win_P.pak`, "Win"},
		{"no extension", "README", "README"},
		{"suffix mid-name untouched", "My_Pack_Extra.pak", "My_Pack_Extra"},
		{"only prefix falls back to file name", "pakchunk1-Mods_.pak", "pakchunk1-Mods_.pak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.DisplayName(tt.input))
		})
	}
}
