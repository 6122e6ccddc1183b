// Package entities defines core domain models and data structures.
package entities

// DownloadedArtifact is a release asset written to local disk by the fetcher
type DownloadedArtifact struct {
	Asset ReleaseAsset
	Path  string
	Size  int64
}

// InstalledTool is an extracted release asset ready to be put on the search path
type InstalledTool struct {
	Name       string
	Version    string
	Platform   PlatformKey
	Dir        string // directory added to the command search path
	Executable string // full path to the executable inside Dir
}
