// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File is a regular file found by ListFiles.
type File struct {
	Path string
	Name string
	Stem string
	Info fs.FileInfo
}

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// ListFiles returns the regular files directly inside dir whose extension is
// ext (without the leading dot), sorted by name. It does not descend into
// subdirectories. Entries whose metadata cannot be read are skipped; only a
// failure to read the directory itself is returned.
func ListFiles(dir string, ext string) ([]File, error) {
	if ext == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	suffix := "." + ext
	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) != suffix {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, File{
			Path: filepath.Join(dir, name),
			Name: name,
			Stem: Stem(name),
			Info: info,
		})
	}

	return files, nil
}

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
