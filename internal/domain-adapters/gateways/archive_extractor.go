package gateways

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces"
)

// Max size of a single extracted file (1GB) to prevent decompression bombs
const maxExtractedFileSize = 1 << 30

// Archive formats understood by ArchiveExtractor
const (
	FormatZip   = "zip"
	FormatTarGz = "tar.gz"
	FormatTarXz = "tar.xz"
)

// ArchiveExtractor unpacks release archives into tool-cache style directories
type ArchiveExtractor struct {
	logger interfaces.Logger
	newID  func() string
}

// NewArchiveExtractor creates a new archive extractor
func NewArchiveExtractor(logger interfaces.Logger) *ArchiveExtractor {
	return &ArchiveExtractor{
		logger: logger,
		newID:  uuid.NewString,
	}
}

// ArchiveFormat detects the archive format from the file name
func ArchiveFormat(name string) (string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return FormatTarXz, nil
	default:
		return "", fmt.Errorf("unsupported archive format: %s", filepath.Base(name))
	}
}

// Extract unpacks archivePath into a new directory under destRoot.
// Every call extracts into its own directory, so repeating it never mixes
// contents with a previous run. On failure the directory is removed.
func (e *ArchiveExtractor) Extract(ctx context.Context, archivePath, destRoot string) (string, error) {
	e.logger.Info("Extracting release asset", interfaces.F("path", archivePath))

	format, err := ArchiveFormat(archivePath)
	if err != nil {
		return "", err
	}

	destDir := filepath.Join(destRoot, e.newID())
	if err := os.MkdirAll(destDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	switch format {
	case FormatZip:
		err = extractZip(ctx, archivePath, destDir)
	case FormatTarGz:
		err = extractTarGz(ctx, archivePath, destDir, e.logger)
	case FormatTarXz:
		err = extractTarXz(ctx, archivePath, destDir, e.logger)
	}

	if err != nil {
		_ = os.RemoveAll(destDir)
		e.logger.Error("Unable to extract release asset", interfaces.F("path", archivePath), interfaces.F("error", err))
		return "", fmt.Errorf("failed to extract %s: %w", archivePath, err)
	}

	e.logger.Debug("Extracted release asset", interfaces.F("dir", destDir))
	return destDir, nil
}

// safeJoin joins name onto destDir and rejects paths escaping it
func safeJoin(destDir, name string) (string, error) {
	//nolint:gosec // G305: Path traversal validated below
	target := filepath.Join(destDir, name)
	root := filepath.Clean(destDir)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return target, nil
}

// writeFile copies r into target, creating parents and truncating existing content
func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if mode.Perm() == 0 {
		mode = 0644
	}

	//nolint:gosec // G304: target validated by safeJoin
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, io.LimitReader(r, maxExtractedFileSize)); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

func extractZip(ctx context.Context, zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if !f.Mode().IsRegular() {
			return fmt.Errorf("unsupported zip entry type for %s", f.Name)
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
		}
		err = writeFile(target, rc, f.Mode())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func extractTarGz(ctx context.Context, tarPath, destDir string, logger interfaces.Logger) error {
	//nolint:gosec // G304: File path tarPath is function parameter for extraction
	file, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("failed to open tar.gz: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	//nolint:errcheck // Defer close on gzip reader
	defer gzr.Close()

	return extractTar(ctx, tar.NewReader(gzr), destDir, logger)
}

func extractTarXz(ctx context.Context, tarPath, destDir string, logger interfaces.Logger) error {
	//nolint:gosec // G304: File path tarPath is function parameter for extraction
	file, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("failed to open tar.xz: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	xzr, err := xz.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	return extractTar(ctx, tar.NewReader(xzr), destDir, logger)
}

func extractTar(ctx context.Context, tr *tar.Reader, destDir string, logger interfaces.Logger) error {
	// Collect symlinks for second pass (to handle cases where target doesn't exist yet)
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read error: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			//nolint:gosec // G115: Integer overflow from tar header mode is acceptable
			if err := writeFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}

		case tar.TypeSymlink:
			symlinks = append(symlinks, symlinkInfo{
				target:   target,
				linkname: header.Linkname,
			})

		default:
			logger.Warn("Ignoring unsupported tar entry",
				interfaces.F("type", string(header.Typeflag)),
				interfaces.F("name", header.Name))
		}
	}

	// Second pass: create symlinks after all files exist
	for _, link := range symlinks {
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			logger.Warn("Failed to create symlink",
				interfaces.F("link", link.target),
				interfaces.F("target", link.linkname),
				interfaces.F("error", err))
		}
	}

	return nil
}
