package domain

// DefaultProfileName is the profile that always exists
const DefaultProfileName = "Default"

// Profile binds a name to a target directory
type Profile struct {
	Name        string
	Directory   string // Absolute path mods are installed into
	AutoExtract bool   // Extract downloaded archives (always true in practice)
}
