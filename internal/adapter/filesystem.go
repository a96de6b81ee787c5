package adapter

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem defines an interface for the file operations of the staging area to enable mocking
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	// MkdirAll creates a directory and any missing parents
	MkdirAll(path string) error

	// Exists reports whether the named file exists
	Exists(name string) (bool, error)

	// OpenAppend opens the named file for appending, creating it if needed
	OpenAppend(name string) (File, error)

	// Open opens the named file for reading
	Open(name string) (io.ReadCloser, error)

	// Glob returns the names of all files matching pattern, sorted
	Glob(pattern string) ([]string, error)

	// Remove removes the named file or directory
	Remove(name string) error
}

// File defines an interface for file operations
type File interface {
	io.Writer
	io.Closer
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

func (fsys *RealFileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (fsys *RealFileSystem) Exists(name string) (bool, error) {
	_, err := os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (fsys *RealFileSystem) OpenAppend(name string) (File, error) {
	return os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec,G304
}

func (fsys *RealFileSystem) Open(name string) (io.ReadCloser, error) {
	return os.Open(name) //nolint:gosec,G304
}

// Glob returns matches in lexical order, which for YYYYMMDD names is chronological
func (fsys *RealFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (fsys *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}
