package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crate/internal/discography"
	"crate/internal/metadata"
	"crate/internal/models"
	"crate/internal/scanner"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestNewScanTaskRoundTrips(t *testing.T) {
	task, err := newScanTask(ScanPayload{Recursive: true, MaxDepth: 5, ArtistID: 42})
	require.NoError(t, err)
	require.Equal(t, TaskTypeScanLibrary, task.Type())

	var decoded ScanPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, ScanPayload{Recursive: true, MaxDepth: 5, ArtistID: 42}, decoded)
}

func TestNewDiscographySyncTaskRoundTrips(t *testing.T) {
	task, err := newDiscographySyncTask(DiscographySyncPayload{ArtistID: 7})
	require.NoError(t, err)
	require.Equal(t, TaskTypeDiscographySync, task.Type())

	var decoded DiscographySyncPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, int64(7), decoded.ArtistID)
}

func TestHandleScanStartsScan(t *testing.T) {
	db := openTestDB(t)
	logger := zerolog.Nop()
	s := scanner.New(db, t.TempDir(), &logger)
	m := &Manager{scanner: s, logger: &logger}

	task, err := newScanTask(ScanPayload{Recursive: true, MaxDepth: 3})
	require.NoError(t, err)

	require.NoError(t, m.handleScan(context.Background(), task))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := s.GetStatus()
		require.NoError(t, err)
		if snap.Status != scanner.StatusRunning {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("scan never left running status")
}

func TestHandleDiscographySyncReturnsErrorForUnknownArtist(t *testing.T) {
	db := openTestDB(t)
	logger := zerolog.Nop()
	client := metadata.NewClient(metadata.Config{})
	svc := discography.New(db, client)
	m := &Manager{discography: svc, logger: &logger}

	task, err := newDiscographySyncTask(DiscographySyncPayload{ArtistID: 999})
	require.NoError(t, err)

	err = m.handleDiscographySync(context.Background(), task)
	require.Error(t, err)
}
