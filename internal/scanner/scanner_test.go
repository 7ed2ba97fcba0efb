package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crate/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func writeID3v1(t *testing.T, path, artist, album, title, year string) {
	t.Helper()
	buf := make([]byte, 128)
	copy(buf[0:3], "TAG")
	copy(buf[3:33], title)
	copy(buf[33:63], artist)
	copy(buf[63:93], album)
	copy(buf[93:97], year)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func waitForIdle(t *testing.T, s *Scanner) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := s.GetStatus()
		require.NoError(t, err)
		if snap.Status == StatusIdle && !snap.StartedAt.IsZero() {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scan did not finish in time")
	return Snapshot{}
}

func TestScanNestedMP3Import(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "New Found Glory", "Waiting (1998)")
	require.NoError(t, os.MkdirAll(albumDir, 0o755))
	writeID3v1(t, filepath.Join(albumDir, "01-song.mp3"),
		"New Found Glory", "Waiting", "Something I Call Personality", "1998")

	db := openTestDB(t)
	s := New(db, root, nil)

	started, _ := s.StartScan(Options{Recursive: true, MaxDepth: 4})
	require.True(t, started)
	waitForIdle(t, s)

	var artists []models.Artist
	require.NoError(t, db.Find(&artists).Error)
	require.Len(t, artists, 1)
	require.Equal(t, "New Found Glory", artists[0].Name)

	var albums []models.Album
	require.NoError(t, db.Find(&albums).Error)
	require.Len(t, albums, 1)
	require.Equal(t, "Waiting", albums[0].Title)
	require.Equal(t, 1, albums[0].TrackCount)
	require.Equal(t, "mp3", albums[0].Formats)
}

func TestScanHardlinkDeduplication(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "New Found Glory", "Waiting (1998)")
	require.NoError(t, os.MkdirAll(albumDir, 0o755))
	original := filepath.Join(albumDir, "01-song.mp3")
	writeID3v1(t, original, "New Found Glory", "Waiting", "Something I Call Personality", "1998")

	hardlink := filepath.Join(albumDir, "01-track-hardlink.mp3")
	if err := os.Link(original, hardlink); err != nil {
		t.Skipf("hardlinks unsupported on this filesystem: %v", err)
	}

	db := openTestDB(t)
	s := New(db, root, nil)

	started, _ := s.StartScan(Options{Recursive: true, MaxDepth: 4})
	require.True(t, started)
	snap := waitForIdle(t, s)

	var trackCount int64
	require.NoError(t, db.Model(&models.Track{}).Where("deleted = ?", false).Count(&trackCount).Error)
	require.Equal(t, int64(1), trackCount)
	require.Equal(t, 1, snap.SkippedReasonsBreakdown["duplicate"])
}

func TestScanFolderOnlyNoTagsSkipsAlbum(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "X", "Album Y")
	require.NoError(t, os.MkdirAll(albumDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(albumDir, "song.ogg"), []byte("no tags here"), 0o644))

	db := openTestDB(t)
	s := New(db, root, nil)

	started, _ := s.StartScan(Options{Recursive: true, MaxDepth: 4})
	require.True(t, started)
	snap := waitForIdle(t, s)

	var albumCount int64
	require.NoError(t, db.Model(&models.Album{}).Count(&albumCount).Error)
	require.Equal(t, int64(0), albumCount)
	require.Equal(t, 1, snap.SkippedReasonsBreakdown["missing album tag"])
}

func TestUpsertArtistCollidesCaseInsensitively(t *testing.T) {
	db := openTestDB(t)
	s := New(db, t.TempDir(), nil)

	first, err := s.upsertArtist("ACDC", "/music/ACDC", time.Now())
	require.NoError(t, err)

	second, err := s.upsertArtist("acdc", "/music/acdc", time.Now())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Artist{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestStartScanRefusesConcurrent(t *testing.T) {
	root := t.TempDir()
	db := openTestDB(t)
	s := New(db, root, nil)

	s.running = true
	started, status := s.StartScan(Options{Recursive: true, MaxDepth: 4})
	require.False(t, started)
	require.Equal(t, StatusRunning, status)
}
