package jobs

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"crate/internal/models"
)

// CronScheduler periodically re-triggers a full library scan and a
// discography re-sync for every known artist, so the missing-albums view
// stays fresh without the UI having to ask for it.
type CronScheduler struct {
	cron    *cron.Cron
	manager *Manager
	db      *gorm.DB
	logger  *zerolog.Logger
}

func NewCronScheduler(manager *Manager, db *gorm.DB, logger *zerolog.Logger) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		manager: manager,
		db:      db,
		logger:  logger,
	}
}

// Start schedules the recurring jobs and starts the cron runner. It does
// not block.
func (s *CronScheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 6h", s.triggerFullScan); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.resyncAllArtists); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CronScheduler) triggerFullScan() {
	if err := s.manager.EnqueueScan(ScanPayload{Recursive: true, MaxDepth: 3}); err != nil {
		s.logger.Error().Err(err).Msg("cron: failed to enqueue full library scan")
	}
}

func (s *CronScheduler) resyncAllArtists() {
	var artists []models.Artist
	if err := s.db.Where("deleted = ?", false).Find(&artists).Error; err != nil {
		s.logger.Error().Err(err).Msg("cron: failed to list artists for discography resync")
		return
	}
	for _, a := range artists {
		if err := s.manager.EnqueueDiscographySync(a.ID); err != nil {
			s.logger.Error().Err(err).Int64("artistId", a.ID).Msg("cron: failed to enqueue discography sync")
		}
	}
}
