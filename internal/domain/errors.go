package domain

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnresolvableSource = errors.New("unresolvable source")
	ErrFileNotAvailable   = errors.New("file not available")
	ErrInvalidArchive     = errors.New("invalid archive")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrEmptyArchive       = errors.New("archive contains no files")
	ErrRelocationFailed   = errors.New("relocation failed")
	ErrUnknownMod         = errors.New("unknown mod")
	ErrModFileMissing     = errors.New("mod file missing")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrProtectedProfile   = errors.New("profile cannot be removed")
	ErrAuthRequired       = errors.New("authentication required")
	ErrDownloadFailed     = errors.New("download failed")
	ErrSaveFailed         = errors.New("saving mod database failed")
	ErrHookFailed         = errors.New("hook failed")
)

// errorKinds is ordered so that the most specific cause wins when an error
// wraps several sentinels (e.g. an extraction failure inside a relocation).
var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidRequest, "InvalidRequest"},
	{ErrUnresolvableSource, "UnresolvableSource"},
	{ErrFileNotAvailable, "FileNotAvailable"},
	{ErrAuthRequired, "AuthRequired"},
	{ErrInvalidArchive, "InvalidArchive"},
	{ErrEmptyArchive, "EmptyArchive"},
	{ErrExtractionFailed, "ExtractionFailed"},
	{ErrRelocationFailed, "RelocationFailed"},
	{ErrUnknownMod, "UnknownMod"},
	{ErrModFileMissing, "ModFileMissing"},
	{ErrProfileNotFound, "ProfileNotFound"},
	{ErrProfileExists, "ProfileExists"},
	{ErrProtectedProfile, "ProtectedProfile"},
	{ErrDownloadFailed, "DownloadFailed"},
	{ErrHookFailed, "HookFailed"},
	{ErrSaveFailed, "SaveFailed"},
}

// ErrorKind classifies err into its taxonomy name. It returns "" for nil and
// "Internal" for errors that wrap none of the sentinels above.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}
