// Package bundle writes the final download archive.
//
// The archive is a flat zip: every member is stored under its base name
// with deflate compression, regardless of where the source file lives on
// disk. Consumers unpack it into a single directory.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write creates (or overwrites) the archive at archivePath containing the
// given files. Members are added in the order given and named by base name
// only.
func Write(archivePath string, files []string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("bundle: create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	for _, file := range files {
		if err := addFile(zw, file); err != nil {
			zw.Close()
			out.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("bundle: finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("bundle: close archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, file string) error {
	in, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("bundle: open %s: %w", file, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("bundle: stat %s: %w", file, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("bundle: header for %s: %w", file, err)
	}
	header.Name = filepath.Base(file)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("bundle: add %s: %w", file, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("bundle: write %s: %w", file, err)
	}
	return nil
}
