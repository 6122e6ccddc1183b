package gateways

import "context"

// ArchiveExtractor unpacks a downloaded release asset
type ArchiveExtractor interface {
	// Extract unpacks archivePath into a fresh directory under destRoot and returns it
	Extract(ctx context.Context, archivePath, destRoot string) (string, error)
}
