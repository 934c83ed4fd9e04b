package curseforge

// APIResponse wraps all CurseForge API responses
type APIResponse[T any] struct {
	Data T `json:"data"`
}

// PaginatedResponse wraps paginated CurseForge API responses
type PaginatedResponse[T any] struct {
	Data       T          `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination info from CurseForge API
type Pagination struct {
	Index       int `json:"index"`
	PageSize    int `json:"pageSize"`
	ResultCount int `json:"resultCount"`
	TotalCount  int `json:"totalCount"`
}

// Mod is the subset of the CurseForge mod object the resolver needs
type Mod struct {
	ID                   int    `json:"id"`
	GameID               int    `json:"gameId"`
	Name                 string `json:"name"`
	Slug                 string `json:"slug"`
	ClassID              int    `json:"classId"`
	MainFileID           int    `json:"mainFileId"`
	AllowModDistribution *bool  `json:"allowModDistribution"`
}

// File represents a downloadable mod file
type File struct {
	ID          int    `json:"id"`
	ModID       int    `json:"modId"`
	IsAvailable bool   `json:"isAvailable"`
	DisplayName string `json:"displayName"`
	FileName    string `json:"fileName"`
	FileLength  int64  `json:"fileLength"`
	DownloadURL string `json:"downloadUrl"`
}

// Game represents a game from the CurseForge API
type Game struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// StringDownloadURL is the response for the download URL endpoint
type StringDownloadURL struct {
	Data string `json:"data"`
}
