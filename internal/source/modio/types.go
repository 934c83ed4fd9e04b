package modio

// Mod is the subset of the mod.io mod object the resolver needs
type Mod struct {
	ID      int      `json:"id"`
	GameID  int      `json:"game_id"`
	NameID  string   `json:"name_id"`
	Name    string   `json:"name"`
	Modfile *Modfile `json:"modfile"`
}

// Modfile is the live file of a mod
type Modfile struct {
	ID       int      `json:"id"`
	Filename string   `json:"filename"`
	Filesize int64    `json:"filesize"`
	Version  string   `json:"version"`
	Download Download `json:"download"`
}

// Download holds the CDN location of a modfile
type Download struct {
	BinaryURL   string `json:"binary_url"`
	DateExpires int64  `json:"date_expires"`
}

// errorResponse is the mod.io error envelope
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
