package core

import (
	"path"
	"regexp"
	"strings"
)

// packagingPrefix matches versioned chunk prefixes such as "pakchunk99-Mods_".
var packagingPrefix = regexp.MustCompile(`(?i)^pakchunk\d+-Mods_`)

// patchSuffix matches the single-letter patch marker engines append, e.g. "Cool_P".
var patchSuffix = regexp.MustCompile(`(?i)_P$`)

// DisplayName derives a human-friendly name from an installed file's name.
// "sub/pakchunk99-Mods_CoolMod_P.pak" becomes "CoolMod".
func DisplayName(localName string) string {
	base := path.Base(strings.ReplaceAll(localName, `\`, "/"))
	name := stripExtension(base)
	name = packagingPrefix.ReplaceAllString(name, "")
	name = patchSuffix.ReplaceAllString(name, "")
	if name == "" {
		return base
	}
	return name
}

// stripExtension removes the file extension from a filename
func stripExtension(filename string) string {
	ext := path.Ext(filename)
	if ext == "" || ext == filename {
		return filename
	}
	return strings.TrimSuffix(filename, ext)
}
