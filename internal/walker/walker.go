// Package walker implements the bounded-depth traversal of a single artist
// directory that feeds the Scanner's per-track admission filters.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

var audioExtensions = map[string]bool{
	"flac": true, "mp3": true, "m4a": true, "aac": true,
	"ogg": true, "opus": true, "wav": true, "aiff": true, "alac": true,
}

// Candidate is one admitted-for-consideration file, with enough filesystem
// identity for the Scanner's cache lookup and dedupe key.
type Candidate struct {
	Path     string
	Ext      string
	Mtime    time.Time
	Size     int64
	Inode    uint64
	Device   uint64
	InodeKey string // "" when the platform doesn't expose meaningful inodes
}

// Options controls traversal depth and recursion.
type Options struct {
	Recursive bool
	MaxDepth  int
}

// OnSkip is called for every path the walker declines to admit, with a
// normalized-at-source reason string (e.g. "hidden-path",
// "unsupported-extension:ogg", "depth-exceeded:3").
type OnSkip func(path, reason string)

// CollectArtistTracks walks artistPath and returns an ordered list of
// candidate audio files. Entries within a directory are visited in sorted
// name order; callers needing cross-artist ordering sort by artist name
// themselves.
func CollectArtistTracks(artistPath string, opts Options, onSkip OnSkip) []Candidate {
	var out []Candidate
	walk(artistPath, artistPath, 0, opts, onSkip, &out)
	return out
}

func walk(root, dir string, depth int, opts Options, onSkip OnSkip, out *[]Candidate) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		onSkip(dir, fmt.Sprintf("unreadable-directory: %v", err))
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)

		if len(name) > 0 && name[0] == '.' {
			onSkip(path, "hidden-path")
			continue
		}

		lst, err := os.Lstat(path)
		if err != nil {
			onSkip(path, fmt.Sprintf("unreadable-path: %v", err))
			continue
		}

		mode := lst.Mode()
		info := lst

		if mode&os.ModeSymlink != 0 {
			resolved, err := os.Stat(path)
			if err != nil {
				onSkip(path, "broken-symlink")
				continue
			}
			info = resolved
		}

		switch {
		case info.IsDir():
			if !opts.Recursive {
				continue
			}
			if depth+1 > opts.MaxDepth {
				onSkip(path, fmt.Sprintf("depth-exceeded:%d", opts.MaxDepth))
				continue
			}
			walk(root, path, depth+1, opts, onSkip, out)

		case info.Mode().IsRegular():
			ext := extOf(name)
			if !audioExtensions[ext] {
				onSkip(path, fmt.Sprintf("unsupported-extension:%s", ext))
				continue
			}
			*out = append(*out, Candidate{
				Path:  path,
				Ext:   ext,
				Mtime: info.ModTime(),
				Size:  info.Size(),
			})
			setPlatformIdentity(path, info, &(*out)[len(*out)-1])

		default:
			onSkip(path, "unsupported-file-type")
		}
	}
}

func extOf(name string) string {
	ext := filepath.Ext(name)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	return toLower(ext)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
