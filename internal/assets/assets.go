// Package assets discovers the face images and input videos the agent works
// with and pairs each video with exactly one face.
package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FaceAsset is a candidate face image. Key is the filename stem and is the
// identity used for matching and for output naming.
type FaceAsset struct {
	Key  string
	Path string
}

// VideoAsset is an input video awaiting processing.
type VideoAsset struct {
	Name string
	Path string
}

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

var faceExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsVideoFile reports whether filename has a recognized video extension.
func IsVideoFile(filename string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsFaceFile reports whether filename has a recognized face image extension.
func IsFaceFile(filename string) bool {
	return faceExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Stem returns the filename without its extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DiscoverVideos lists the videos directly inside dir, sorted by name.
// Files with unrecognized extensions and dotfiles are skipped.
func DiscoverVideos(dir string) ([]VideoAsset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var videos []VideoAsset
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !IsVideoFile(e.Name()) {
			continue
		}
		videos = append(videos, VideoAsset{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].Name < videos[j].Name })
	return videos, nil
}

// DiscoverFaces lists the face images directly inside dir, sorted by key.
func DiscoverFaces(dir string) ([]FaceAsset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var faces []FaceAsset
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !IsFaceFile(e.Name()) {
			continue
		}
		faces = append(faces, FaceAsset{
			Key:  Stem(e.Name()),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(faces, func(i, j int) bool { return faces[i].Key < faces[j].Key })
	return faces, nil
}
