package scanner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"crate/internal/models"
	"crate/internal/normalizer"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// upsertAlbumGroup materializes one admitted track group as an album plus
// its tracks, keyed by the deterministic virtual path.
func (s *Scanner) upsertAlbumGroup(artist *models.Artist, artistPath, albumTitle string, seenAt time.Time, members []admittedTrack) error {
	path := virtualAlbumPath(artistPath, albumTitle)

	formats := map[string]bool{}
	var lastMtime time.Time
	for _, m := range members {
		formats[m.candidate.Ext] = true
		if m.candidate.Mtime.After(lastMtime) {
			lastMtime = m.candidate.Mtime
		}
	}

	formatList := make([]string, 0, len(formats))
	for ext := range formats {
		formatList = append(formatList, ext)
	}
	sort.Strings(formatList)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var album models.Album
		err := tx.Where("path = ?", path).First(&album).Error
		switch {
		case err == nil:
			album.Title = albumTitle
			album.NameNormalized = normalizer.NormalizeTitle(albumTitle)
			album.Formats = strings.Join(formatList, ",")
			album.TrackCount = len(members)
			album.LastFileMtime = lastMtime
			album.LastSeen = seenAt
			album.Deleted = false
			if err := tx.Save(&album).Error; err != nil {
				return fmt.Errorf("update album %s: %w", path, err)
			}
		case isNotFound(err):
			album = models.Album{
				ArtistID:       artist.ID,
				Path:           path,
				Title:          albumTitle,
				NameNormalized: normalizer.NormalizeTitle(albumTitle),
				Formats:        strings.Join(formatList, ","),
				TrackCount:     len(members),
				LastFileMtime:  lastMtime,
				Owned:          true,
				LastSeen:       seenAt,
			}
			if err := tx.Create(&album).Error; err != nil {
				return fmt.Errorf("create album %s: %w", path, err)
			}
		default:
			return fmt.Errorf("lookup album %s: %w", path, err)
		}

		for _, m := range members {
			var track models.Track
			terr := tx.Where("path = ?", m.candidate.Path).First(&track).Error
			switch {
			case terr == nil:
				track.AlbumID = album.ID
				track.Ext = m.candidate.Ext
				track.Mtime = m.candidate.Mtime
				track.LastSeen = seenAt
				track.Deleted = false
				if err := tx.Save(&track).Error; err != nil {
					return fmt.Errorf("update track %s: %w", m.candidate.Path, err)
				}
			case isNotFound(terr):
				track = models.Track{
					AlbumID:  album.ID,
					Path:     m.candidate.Path,
					Ext:      m.candidate.Ext,
					Mtime:    m.candidate.Mtime,
					LastSeen: seenAt,
				}
				if err := tx.Create(&track).Error; err != nil {
					return fmt.Errorf("create track %s: %w", m.candidate.Path, err)
				}
			default:
				return fmt.Errorf("lookup track %s: %w", m.candidate.Path, terr)
			}
		}

		return nil
	})
}

// sweep soft-deletes anything not seen in this full-library scan and prunes
// stale file_index rows. Only called for full-library runs, and never when
// the run was cancelled.
func (s *Scanner) sweep(r *run) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Track{}).
			Where("last_seen < ? AND deleted = ?", r.startedAt, false).
			Update("deleted", true).Error; err != nil {
			return fmt.Errorf("sweep tracks: %w", err)
		}
		if err := tx.Model(&models.Album{}).
			Where("last_seen < ? AND deleted = ?", r.startedAt, false).
			Update("deleted", true).Error; err != nil {
			return fmt.Errorf("sweep albums: %w", err)
		}
		if err := tx.Model(&models.Artist{}).
			Where("last_seen < ? AND deleted = ?", r.startedAt, false).
			Update("deleted", true).Error; err != nil {
			return fmt.Errorf("sweep artists: %w", err)
		}
		if err := tx.Where("last_scan_at < ?", r.startedAt).Delete(&models.FileIndex{}).Error; err != nil {
			return fmt.Errorf("prune file_index: %w", err)
		}
		return nil
	})
}
