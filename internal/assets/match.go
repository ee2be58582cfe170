package assets

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoFaces is returned when matching is requested against an empty face
// set. It is a configuration error: the run must abort before any file is
// touched.
var ErrNoFaces = errors.New("no face images available")

// Pair associates one video with the single face it will be swapped with.
type Pair struct {
	Video VideoAsset
	Face  FaceAsset
}

// MatchOptions tunes pairing without changing its determinism.
type MatchOptions struct {
	// Mappings maps a video filename (or stem) to a face key, overriding
	// substring matching for that video. Values naming a file are reduced
	// to their stem.
	Mappings map[string]string

	// DefaultFace is the key of the face used when no substring match
	// exists. Empty means the lexicographically first face.
	DefaultFace string
}

// Match pairs every video with exactly one face.
//
// Selection order per video: explicit mapping, then the face whose key is a
// case-sensitive substring of the video filename (longest key wins, remaining
// ties broken by lexicographic key order), then the default face, then the
// lexicographically first face. Videos without a recognized extension are
// excluded. Match is pure: identical inputs always yield identical pairs.
func Match(videos []VideoAsset, faces []FaceAsset, opts MatchOptions) ([]Pair, error) {
	if len(faces) == 0 {
		return nil, ErrNoFaces
	}

	sortedFaces := make([]FaceAsset, len(faces))
	copy(sortedFaces, faces)
	sort.Slice(sortedFaces, func(i, j int) bool { return sortedFaces[i].Key < sortedFaces[j].Key })

	byKey := make(map[string]FaceAsset, len(sortedFaces))
	for _, f := range sortedFaces {
		if _, ok := byKey[f.Key]; !ok {
			byKey[f.Key] = f
		}
	}

	sortedVideos := make([]VideoAsset, 0, len(videos))
	for _, v := range videos {
		if IsVideoFile(v.Name) {
			sortedVideos = append(sortedVideos, v)
		}
	}
	sort.Slice(sortedVideos, func(i, j int) bool { return sortedVideos[i].Name < sortedVideos[j].Name })

	pairs := make([]Pair, 0, len(sortedVideos))
	for _, v := range sortedVideos {
		pairs = append(pairs, Pair{Video: v, Face: matchOne(v, sortedFaces, byKey, opts)})
	}
	return pairs, nil
}

func matchOne(v VideoAsset, faces []FaceAsset, byKey map[string]FaceAsset, opts MatchOptions) FaceAsset {
	if key, ok := mappingFor(v, opts.Mappings); ok {
		if f, ok := byKey[key]; ok {
			return f
		}
	}

	best := -1
	for i, f := range faces {
		// Substring matching is case-sensitive so pairing is reproducible
		// byte-for-byte across platforms.
		if f.Key == "" || !strings.Contains(v.Name, f.Key) {
			continue
		}
		// Longest key is the most specific match; faces are already in
		// lexicographic order, so a strictly longer key is required to
		// displace an earlier candidate.
		if best == -1 || len(f.Key) > len(faces[best].Key) {
			best = i
		}
	}
	if best >= 0 {
		return faces[best]
	}

	if opts.DefaultFace != "" {
		if f, ok := byKey[opts.DefaultFace]; ok {
			return f
		}
	}
	return faces[0]
}

func mappingFor(v VideoAsset, mappings map[string]string) (string, bool) {
	if len(mappings) == 0 {
		return "", false
	}
	if target, ok := mappings[v.Name]; ok {
		return Stem(target), true
	}
	if target, ok := mappings[Stem(v.Name)]; ok {
		return Stem(target), true
	}
	return "", false
}
