package scanner

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"crate/internal/models"
	"crate/internal/normalizer"
	"crate/internal/tagreader"
	"crate/internal/utils"
	"crate/internal/walker"
)

func (s *Scanner) beginState(r *run) error {
	if err := s.db.Where("scan_started_at < ?", r.startedAt).Delete(&models.ScanSkipped{}).Error; err != nil {
		return fmt.Errorf("clear prior scan_skipped rows: %w", err)
	}

	state := models.ScanState{
		ID:              1,
		Status:          string(StatusRunning),
		StartedAt:       r.startedAt,
		FinishedAt:      nil,
		CurrentPath:     "",
		ScannedCount:    0,
		SkippedCount:    0,
		CancelRequested: false,
		UpdatedAt:       time.Now(),
	}
	return s.db.Save(&state).Error
}

func (s *Scanner) setCurrentPath(r *run, dirName string) {
	s.db.Model(&models.ScanState{}).Where("id = 1").Updates(map[string]interface{}{
		"current_path": dirName,
		"updated_at":   time.Now(),
	})
}

func (s *Scanner) recordSkip(r *run, path, reason string) {
	r.skippedCnt++
	r.breakdown[canonicalizeSkipReason(reason)]++

	skip := models.ScanSkipped{
		ScanStartedAt: r.startedAt,
		FilePath:      path,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
	if err := s.db.Create(&skip).Error; err != nil && s.logger != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to persist scan skip")
	}
}

func (s *Scanner) finishWithError(r *run, err error) {
	if s.logger != nil {
		s.logger.Error().Err(err).Msg("scan failed")
	}
	now := time.Now()
	breakdown, _ := json.Marshal(r.breakdown)
	s.db.Model(&models.ScanState{}).Where("id = 1").Updates(map[string]interface{}{
		"status":               string(StatusError),
		"finished_at":          now,
		"scanned_count":        r.scanned,
		"skipped_count":        r.skippedCnt,
		"skipped_reasons_json": string(breakdown),
		"error_message":        err.Error(),
		"updated_at":           now,
	})
}

func (s *Scanner) finishCancelled(r *run) {
	now := time.Now()
	breakdown, _ := json.Marshal(r.breakdown)
	s.db.Model(&models.ScanState{}).Where("id = 1").Updates(map[string]interface{}{
		"status":               string(StatusCancelled),
		"finished_at":          now,
		"scanned_count":        r.scanned,
		"skipped_count":        r.skippedCnt,
		"skipped_reasons_json": string(breakdown),
		"updated_at":           now,
	})
}

func (s *Scanner) finishOK(r *run) {
	now := time.Now()
	breakdown, _ := json.Marshal(r.breakdown)
	s.db.Model(&models.ScanState{}).Where("id = 1").Updates(map[string]interface{}{
		"status":               string(StatusIdle),
		"finished_at":          now,
		"scanned_count":        r.scanned,
		"skipped_count":        r.skippedCnt,
		"skipped_reasons_json": string(breakdown),
		"error_message":        "",
		"updated_at":           now,
	})
}

func decodeBreakdown(raw string) (map[string]int, error) {
	if raw == "" {
		return map[string]int{}, nil
	}
	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// canonicalizeSkipReason buckets a raw (possibly suffixed) skip reason into
// the histogram categories surfaced by GetStatus.
func canonicalizeSkipReason(raw string) string {
	switch {
	case strings.HasPrefix(raw, "unsupported-extension:"):
		return "unsupported extension"
	case strings.HasPrefix(raw, "unreadable"):
		return "unreadable"
	case raw == "missing album tag":
		return "missing album tag"
	case strings.HasPrefix(raw, "missing artist tag") || strings.HasPrefix(raw, "missing-artist-tag"):
		return "missing artist tag"
	case strings.HasPrefix(raw, "duplicate") || strings.HasPrefix(raw, "deduped"):
		return "duplicate"
	case strings.HasPrefix(raw, "parse-error"):
		return "parse error"
	default:
		return raw
	}
}

func listTopLevelDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *Scanner) upsertArtist(name, path string, seenAt time.Time) (*models.Artist, error) {
	var artist models.Artist
	err := s.db.Where("lower(name) = lower(?)", name).First(&artist).Error
	if err == nil {
		artist.Path = path
		artist.LastSeen = seenAt
		artist.Deleted = false
		return &artist, s.db.Save(&artist).Error
	}

	slug, err := s.slugGen.Generate(name)
	if err != nil {
		return nil, fmt.Errorf("generate slug for %s: %w", name, err)
	}

	artist = models.Artist{
		Name:     name,
		Slug:     slug,
		Path:     path,
		LastSeen: seenAt,
	}
	if err := s.db.Create(&artist).Error; err != nil {
		return nil, fmt.Errorf("create artist %s: %w", name, err)
	}
	return &artist, nil
}

// resolveTags consults the file_index cache before falling back to the tag
// reader and, for filesystems without meaningful inodes, a content hash.
func (s *Scanner) resolveTags(r *run, cand walker.Candidate) (*tagreader.Tags, error) {
	var cached models.FileIndex
	err := s.db.Where("path = ?", cand.Path).First(&cached).Error
	if err == nil && cached.Mtime.Equal(cand.Mtime) && cached.Size == cand.Size {
		cached.LastScanAt = r.startedAt
		s.db.Save(&cached)
		return &tagreader.Tags{
			Album:       cached.TagAlbum,
			AlbumArtist: cached.TagAlbumArtist,
			Artist:      cached.TagArtist,
			Year:        cached.TagYear,
			Title:       cached.TagTitle,
		}, nil
	}

	tags := tagreader.Read(cand.Path, cand.Ext)
	if tags == nil {
		tags = &tagreader.Tags{}
	}

	fileHash := ""
	if cand.InodeKey == "" {
		fileHash, err = fileHashFirstMB(cand.Path)
		if err != nil {
			return nil, err
		}
	}

	entry := models.FileIndex{
		Path:           cand.Path,
		Mtime:          cand.Mtime,
		Size:           cand.Size,
		InodeKey:       cand.InodeKey,
		FileHash:       fileHash,
		TagAlbum:       tags.Album,
		TagAlbumArtist: tags.AlbumArtist,
		TagArtist:      tags.Artist,
		TagYear:        tags.Year,
		TagTitle:       tags.Title,
		LastScanAt:     r.startedAt,
	}
	if err := s.db.Save(&entry).Error; err != nil {
		return nil, fmt.Errorf("upsert file_index for %s: %w", cand.Path, err)
	}

	return tags, nil
}

// admissionReason evaluates the per-track admission filters (except dedup,
// which needs scan-wide state) and returns a skip reason, or "" if admitted.
func admissionReason(folderArtistName string, cand walker.Candidate, tags *tagreader.Tags) string {
	if tags.Album == "" {
		return "missing album tag"
	}
	if tags.AlbumArtist == "" && tags.Artist == "" {
		return "missing artist tag"
	}
	if tags.AlbumArtist != "" && folderArtistName != "" {
		if normalizer.NormalizeTitle(folderArtistName) != normalizer.NormalizeTitle(tags.AlbumArtist) {
			return "missing artist tag"
		}
	}
	return ""
}

// dedupeKey identifies a track's physical identity for hardlink/duplicate
// detection within a single scan.
func dedupeKey(cand walker.Candidate) string {
	if cand.InodeKey != "" {
		return "inode:" + cand.InodeKey
	}
	mtimeRounded := cand.Mtime.Truncate(time.Second).Unix()
	return fmt.Sprintf("fallback:%d:%d:%s", cand.Size, mtimeRounded, shortHash(cand.Path))
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// fileHashFirstMB hashes the first MiB of a file with SHA1, returning the
// first 16 hex characters — used as a fallback identity when the
// filesystem doesn't expose meaningful inode numbers.
func fileHashFirstMB(path string) (string, error) {
	full, err := utils.CalculateFilePrefixSHA1(path, 1<<20)
	if err != nil {
		return "", err
	}
	return full[:16], nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	lower := strings.ToLower(s)
	slug := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

// virtualAlbumPath builds the deterministic, filesystem-safe identity an
// album is upserted under. It is never created on disk.
func virtualAlbumPath(artistPath, albumTitle string) string {
	sum := sha1.Sum([]byte(albumTitle))
	suffix := hex.EncodeToString(sum[:])[:8]
	return filepath.Join(artistPath, ".crate", fmt.Sprintf("%s-%s", slugify(albumTitle), suffix))
}
