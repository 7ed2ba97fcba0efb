// Package jobs wires the Scanner and Discography Service into asynq
// background tasks, so a scan or a metadata sync can be triggered without
// blocking the HTTP handler that requested it.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"crate/internal/discography"
	"crate/internal/scanner"
)

const (
	TaskTypeScanLibrary     = "scan:library"
	TaskTypeDiscographySync = "discography:sync"
)

// ScanPayload mirrors scanner.Options for the task queue.
type ScanPayload struct {
	Recursive bool  `json:"recursive"`
	MaxDepth  int   `json:"maxDepth"`
	ArtistID  int64 `json:"artistId"`
}

// DiscographySyncPayload names the single artist a sync task covers.
type DiscographySyncPayload struct {
	ArtistID int64 `json:"artistId"`
}

func newScanTask(p ScanPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal scan payload: %w", err)
	}
	return asynq.NewTask(TaskTypeScanLibrary, payload), nil
}

func newDiscographySyncTask(p DiscographySyncPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal discography sync payload: %w", err)
	}
	return asynq.NewTask(TaskTypeDiscographySync, payload), nil
}

// Manager enqueues and handles the library's two background task types.
type Manager struct {
	client      *asynq.Client
	scanner     *scanner.Scanner
	discography *discography.Service
	logger      *zerolog.Logger
}

func NewManager(redisOpt asynq.RedisClientOpt, scanner *scanner.Scanner, discographySvc *discography.Service, logger *zerolog.Logger) *Manager {
	return &Manager{
		client:      asynq.NewClient(redisOpt),
		scanner:     scanner,
		discography: discographySvc,
		logger:      logger,
	}
}

func (m *Manager) Close() error {
	return m.client.Close()
}

// EnqueueScan dispatches a background scan request. Callers that need the
// scan to have genuinely started should check scanner.StartScan's own
// return value instead — enqueuing never fails just because a scan is
// already running, it only fails to queue the task itself.
func (m *Manager) EnqueueScan(p ScanPayload) error {
	task, err := newScanTask(p)
	if err != nil {
		return err
	}
	_, err = m.client.Enqueue(task)
	return err
}

func (m *Manager) EnqueueDiscographySync(artistID int64) error {
	task, err := newDiscographySyncTask(DiscographySyncPayload{ArtistID: artistID})
	if err != nil {
		return err
	}
	_, err = m.client.Enqueue(task)
	return err
}

// RegisterHandlers wires both task types into mux for the asynq worker
// process to consume.
func (m *Manager) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeScanLibrary, m.handleScan)
	mux.HandleFunc(TaskTypeDiscographySync, m.handleDiscographySync)
}

func (m *Manager) handleScan(ctx context.Context, t *asynq.Task) error {
	var p ScanPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal scan payload: %w", err)
	}

	started, status := m.scanner.StartScan(scanner.Options{
		Recursive: p.Recursive,
		MaxDepth:  p.MaxDepth,
		ArtistID:  p.ArtistID,
	})
	if !started {
		m.logger.Info().Str("status", string(status)).Msg("scan task skipped, scan already running")
	}
	return nil
}

func (m *Manager) handleDiscographySync(ctx context.Context, t *asynq.Task) error {
	var p DiscographySyncPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal discography sync payload: %w", err)
	}

	if _, err := m.discography.SyncExpectedForArtist(ctx, p.ArtistID); err != nil {
		return fmt.Errorf("sync artist %d: %w", p.ArtistID, err)
	}
	return nil
}
