package nexusmods

// GameData is a game from the REST API v1 games endpoint
type GameData struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	DomainName string `json:"domain_name"`
}

// FileData is a mod file from the GraphQL v2 modFiles query
type FileData struct {
	FileID      int    `graphql:"fileId"`
	Name        string `graphql:"name"`
	URI         string `graphql:"uri"` // File name of the archive
	Version     string `graphql:"version"`
	Category    string `graphql:"category"` // MAIN, UPDATE, OPTIONAL, OLD_VERSION, ...
	Primary     int    `graphql:"primary"`
	SizeInBytes string `graphql:"sizeInBytes"`
	Date        int64  `graphql:"date"` // Upload time, unix seconds
}

// DownloadLink represents a download URL response
type DownloadLink struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	URI       string `json:"URI"`
}
