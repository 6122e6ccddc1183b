package entities

// Release is the metadata of one tagged GitHub release
type Release struct {
	ID      int64
	TagName string
	Name    string
	Assets  []ReleaseAsset
}

// ReleaseAsset is one downloadable file attached to a release
type ReleaseAsset struct {
	ID                 int64
	Name               string
	Size               int64
	ContentType        string
	BrowserDownloadURL string
}
