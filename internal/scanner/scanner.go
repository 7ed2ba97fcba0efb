// Package scanner walks a read-only music library, extracts embedded tags,
// and materializes an artists/albums/tracks inventory with a soft-delete
// sweep. At most one scan runs at a time process-wide.
package scanner

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"crate/internal/directory"
	"crate/internal/models"
	"crate/internal/normalizer"
	"crate/internal/tagreader"
	"crate/internal/walker"
)

// Status mirrors the ScanState.Status column.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Options controls a single scan invocation.
type Options struct {
	Recursive bool
	MaxDepth  int
	ArtistID  int64 // 0 means full-library run
}

// Snapshot is the JSON-friendly view returned by GetStatus.
type Snapshot struct {
	Status                  Status         `json:"status"`
	StartedAt               time.Time      `json:"startedAt"`
	FinishedAt               *time.Time    `json:"finishedAt,omitempty"`
	CurrentPath              string        `json:"currentPath"`
	ScannedCount             int           `json:"scannedCount"`
	SkippedCount             int           `json:"skippedCount"`
	SkippedReasonsBreakdown  map[string]int `json:"skippedReasonsBreakdown"`
	ErrorMessage             string        `json:"errorMessage,omitempty"`
}

// Scanner is the single-flight, cancellable scan job. One Scanner is shared
// process-wide; StartScan refuses a second concurrent run.
type Scanner struct {
	db          *gorm.DB
	libraryRoot string
	slugGen     *directory.SlugGenerator
	logger      *zerolog.Logger

	mu              sync.Mutex
	running         bool
	cancelRequested bool
}

// New constructs a Scanner rooted at libraryRoot (the read-only mount).
func New(db *gorm.DB, libraryRoot string, logger *zerolog.Logger) *Scanner {
	return &Scanner{
		db:          db,
		libraryRoot: libraryRoot,
		slugGen:     directory.NewSlugGenerator(directory.DefaultSlugConfig(), db),
		logger:      logger,
	}
}

// StartScan begins a scan in the background unless one is already running.
func (s *Scanner) StartScan(opts Options) (started bool, status Status) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false, StatusRunning
	}
	s.running = true
	s.cancelRequested = false
	s.mu.Unlock()

	go s.runScan(opts)

	return true, StatusRunning
}

// RequestCancel flags the running scan to stop at the next checkpoint and
// reports whether a scan was actually in flight.
func (s *Scanner) RequestCancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.cancelRequested = true
	return true
}

func (s *Scanner) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelRequested
}

// GetStatus returns the current (or last) scan's progress snapshot.
func (s *Scanner) GetStatus() (Snapshot, error) {
	var state models.ScanState
	if err := s.db.First(&state, 1).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Snapshot{Status: StatusIdle, SkippedReasonsBreakdown: map[string]int{}}, nil
		}
		return Snapshot{}, err
	}

	breakdown, err := decodeBreakdown(state.SkippedReasonsJSON)
	if err != nil {
		breakdown = map[string]int{}
	}

	return Snapshot{
		Status:                  Status(state.Status),
		StartedAt:               state.StartedAt,
		FinishedAt:              state.FinishedAt,
		CurrentPath:             state.CurrentPath,
		ScannedCount:            state.ScannedCount,
		SkippedCount:            state.SkippedCount,
		SkippedReasonsBreakdown: breakdown,
		ErrorMessage:            state.ErrorMessage,
	}, nil
}

// ListSkipped returns the most recent skip rows for the current/last run,
// newest first, capped at limit.
func (s *Scanner) ListSkipped(limit int) ([]models.ScanSkipped, error) {
	var rows []models.ScanSkipped
	if err := s.db.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// run holds the per-invocation mutable state threaded through the scan.
type run struct {
	startedAt   time.Time
	fullScan    bool
	opts        Options
	dedupeSeen  map[string]bool
	breakdown   map[string]int
	scanned     int
	skippedCnt  int
}

func (s *Scanner) runScan(opts Options) {
	r := &run{
		startedAt:  time.Now(),
		fullScan:   opts.ArtistID == 0,
		opts:       opts,
		dedupeSeen: map[string]bool{},
		breakdown:  map[string]int{},
	}

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.beginState(r); err != nil {
		s.finishWithError(r, err)
		return
	}

	artistDirs, err := s.listArtistDirectories(opts)
	if err != nil {
		s.finishWithError(r, err)
		return
	}

	for _, dirName := range artistDirs {
		if s.isCancelled() {
			s.finishCancelled(r)
			return
		}
		s.setCurrentPath(r, dirName)
		if err := s.scanArtistDirectory(r, dirName); err != nil {
			s.recordSkip(r, dirName, fmt.Sprintf("parse-error: %v", err))
		}
	}

	if s.isCancelled() {
		s.finishCancelled(r)
		return
	}

	if r.fullScan {
		if err := s.sweep(r); err != nil {
			s.finishWithError(r, err)
			return
		}
	}

	s.finishOK(r)
}

func (s *Scanner) listArtistDirectories(opts Options) ([]string, error) {
	if opts.ArtistID != 0 {
		var artist models.Artist
		if err := s.db.First(&artist, opts.ArtistID).Error; err != nil {
			return nil, fmt.Errorf("resolve scoped artist: %w", err)
		}
		return []string{filepath.Base(artist.Path)}, nil
	}

	entries, err := listTopLevelDirs(s.libraryRoot)
	if err != nil {
		return nil, fmt.Errorf("enumerate library root: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

func (s *Scanner) scanArtistDirectory(r *run, dirName string) error {
	artistPath := filepath.Join(s.libraryRoot, dirName)

	artist, err := s.upsertArtist(dirName, artistPath, r.startedAt)
	if err != nil {
		return err
	}

	candidates := walker.CollectArtistTracks(artistPath, walker.Options{
		Recursive: r.opts.Recursive,
		MaxDepth:  r.opts.MaxDepth,
	}, func(path, reason string) {
		s.recordSkip(r, path, reason)
	})

	groups := map[string][]admittedTrack{}

	for _, cand := range candidates {
		if s.isCancelled() {
			return nil
		}

		tags, err := s.resolveTags(r, cand)
		if err != nil {
			s.recordSkip(r, cand.Path, fmt.Sprintf("parse-error: %v", err))
			continue
		}

		reason := admissionReason(dirName, cand, tags)
		if reason != "" {
			s.recordSkip(r, cand.Path, reason)
			continue
		}

		key := dedupeKey(cand)
		if r.dedupeSeen[key] {
			s.recordSkip(r, cand.Path, "duplicate")
			continue
		}
		r.dedupeSeen[key] = true

		albumArtistName := tags.AlbumArtist
		if albumArtistName == "" {
			albumArtistName = tags.Artist
		}
		gk := normalizer.NormalizeTitle(albumArtistName) + "::" + normalizer.NormalizeTitle(tags.Album)
		groups[gk] = append(groups[gk], admittedTrack{candidate: cand, tags: tags})

		r.scanned++
	}

	for _, members := range groups {
		if err := s.upsertAlbumGroup(artist, artistPath, members[0].tags.Album, r.startedAt, members); err != nil {
			return err
		}
	}

	return nil
}

// admittedTrack pairs a walked candidate with its resolved tags once it has
// passed every per-track admission filter.
type admittedTrack struct {
	candidate walker.Candidate
	tags      *tagreader.Tags
}
