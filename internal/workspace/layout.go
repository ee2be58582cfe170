// Package workspace defines the fixed directory layout the agent operates on:
// input/ for pending videos, faces/ for candidate face images, output/ for
// results, processed/ for originals after success, errors/ for originals after
// failure. Directory membership is the only processing state the agent keeps.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	InputDirName     = "input"
	FacesDirName     = "faces"
	OutputDirName    = "output"
	ProcessedDirName = "processed"
	ErrorsDirName    = "errors"

	JournalFilename = "swapdeck.log"
	ConfigFilename  = "swapdeck.yaml"
)

// Layout is the workspace rooted at a base directory.
type Layout struct {
	base string
}

func New(base string) (*Layout, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace dir: %w", err)
	}
	return &Layout{base: abs}, nil
}

func (l *Layout) Base() string      { return l.base }
func (l *Layout) Input() string     { return filepath.Join(l.base, InputDirName) }
func (l *Layout) Faces() string     { return filepath.Join(l.base, FacesDirName) }
func (l *Layout) Output() string    { return filepath.Join(l.base, OutputDirName) }
func (l *Layout) Processed() string { return filepath.Join(l.base, ProcessedDirName) }
func (l *Layout) Errors() string    { return filepath.Join(l.base, ErrorsDirName) }

func (l *Layout) JournalPath() string { return filepath.Join(l.base, JournalFilename) }
func (l *Layout) ConfigPath() string  { return filepath.Join(l.base, ConfigFilename) }

// Dirs returns every directory of the layout in a stable order.
func (l *Layout) Dirs() []string {
	return []string{l.Input(), l.Faces(), l.Output(), l.Processed(), l.Errors()}
}

// EnsureDirs creates any missing workspace directory.
func (l *Layout) EnsureDirs() error {
	for _, d := range l.Dirs() {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("cannot create %s: %w", d, err)
		}
	}
	return nil
}

// Counts reports the number of regular files per directory, keyed by the
// directory's short name.
func (l *Layout) Counts() (map[string]int, error) {
	counts := make(map[string]int, 5)
	for _, d := range l.Dirs() {
		entries, err := os.ReadDir(d)
		if err != nil {
			if os.IsNotExist(err) {
				counts[filepath.Base(d)] = 0
				continue
			}
			return nil, err
		}
		n := 0
		for _, e := range entries {
			if e.Type().IsRegular() {
				n++
			}
		}
		counts[filepath.Base(d)] = n
	}
	return counts, nil
}

// MoveFile relocates src into dstDir keeping its filename. A plain rename is
// attempted first; when it fails (typically a cross-filesystem move) the file
// is copied and the source removed. An existing destination name is never
// overwritten; a numeric suffix is appended instead.
func MoveFile(src, dstDir string) (string, error) {
	dst, err := availableDest(dstDir, filepath.Base(src))
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("cannot move %s to %s: %w", src, dstDir, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("copied but cannot remove source %s: %w", src, err)
	}
	return dst, nil
}

// availableDest picks a destination path in dir that does not exist yet.
func availableDest(dir, name string) (string, error) {
	dst := filepath.Join(dir, name)
	if _, err := os.Lstat(dst); os.IsNotExist(err) {
		return dst, nil
	}
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for i := 1; i < 1000; i++ {
		dst = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Lstat(dst); os.IsNotExist(err) {
			return dst, nil
		}
	}
	return "", fmt.Errorf("no available destination name for %s in %s", name, dir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
