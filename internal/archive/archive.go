// SPDX-License-Identifier: MPL-2.0

// Package archive packs a package directory into a zip file and unpacks one
// into an install destination.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for an archive entry that would land outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

type (
	// Extractor unpacks an archive into a directory and returns the relative,
	// slash-separated paths it created.
	Extractor interface {
		Extract(archivePath, destDir string) ([]string, error)
	}

	// Zip implements Extractor for zip archives.
	Zip struct{}

	// UnsafePathError names the offending entry.
	UnsafePathError struct {
		Entry string
	}
)

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("invalid path in archive: %s", e.Entry)
}

// Unwrap returns ErrUnsafePath for errors.Is() compatibility.
func (e *UnsafePathError) Unwrap() error { return ErrUnsafePath }

// Extract implements Extractor.
func (Zip) Extract(archivePath, destDir string) ([]string, error) {
	return Extract(archivePath, destDir)
}

// Pack writes every regular file and directory under srcDir into a zip at
// dst. Entry names are relative to srcDir, so extracting the archive recreates
// the package contents directly in the destination.
func Pack(srcDir, dst string) (err error) {
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return fmt.Errorf("failed to resolve package directory: %w", err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	zipFile, err := os.Create(absDst)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(absDst)
		}
	}()

	zw := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	walkErr := filepath.WalkDir(absSrc, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == absDst {
			return nil
		}

		rel, relErr := filepath.Rel(absSrc, p)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			if _, createErr := zw.Create(name + "/"); createErr != nil {
				return fmt.Errorf("failed to create directory entry: %w", createErr)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return addFile(zw, p, name, d)
	})
	if walkErr != nil {
		return fmt.Errorf("failed to archive %s: %w", srcDir, walkErr)
	}
	return nil
}

func addFile(zw *zip.Writer, src, name string, d fs.DirEntry) (err error) {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Extract unpacks the zip at archivePath into destDir, creating it if needed,
// and returns the created paths relative to destDir in archive order.
// Nothing is written if any entry would escape destDir.
func Extract(archivePath, destDir string) (paths []string, err error) {
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination directory: %w", err)
	}

	zr, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		if zr != nil {
			_ = zr.Close()
		}
		return nil, &UnsafePathError{Entry: archivePath}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, f := range zr.File {
		if err := checkEntry(f.Name); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	for _, f := range zr.File {
		name := strings.TrimSuffix(path.Clean(f.Name), "/")
		destPath := filepath.Join(absDest, filepath.FromSlash(name))

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
			paths = append(paths, name)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := extractFile(f, destPath); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		paths = append(paths, name)
	}

	return paths, nil
}

func checkEntry(name string) error {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || filepath.VolumeName(clean) != "" {
		return &UnsafePathError{Entry: name}
	}
	return nil
}

func extractFile(f *zip.File, destPath string) (err error) {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: packages come from the configured registry
	_, err = io.Copy(out, rc)
	return err
}
