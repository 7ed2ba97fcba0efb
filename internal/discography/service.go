// Package discography reconciles an artist's owned albums against the
// release-groups reported by the metadata service, producing the
// missing/owned/ignored breakdown the spec calls the discography summary.
package discography

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crate/internal/metadata"
	"crate/internal/models"
	"crate/internal/normalizer"
	"crate/internal/utils"
)

const (
	syncTimeout     = 15 * time.Second
	titleOverlapMin = 0.75
)

// Service is the Discography/Reconciliation Service.
type Service struct {
	db     *gorm.DB
	client *metadata.Client
}

func New(db *gorm.DB, client *metadata.Client) *Service {
	return &Service{db: db, client: client}
}

// Summary is the computed owned/expected/missing breakdown for one artist.
type Summary struct {
	Artist               models.Artist
	Settings             models.ExpectedArtistSettings
	OwnedCount           int
	ExpectedCount        int
	MissingCount         int
	IgnoredCount         int
	CompletionPct        *int
	MissingAlbums        []models.ExpectedAlbum
	MatchedOwnedAlbums   []models.Album
	UnmatchedOwnedAlbums []models.Album
}

// SyncExpectedForArtist resolves (or reuses) the artist's MusicBrainz id,
// refreshes its expected-album set from the metadata service, and returns
// the recomputed summary. Per spec §4.6, an already-resolved mbid is never
// re-looked-up by name.
func (s *Service) SyncExpectedForArtist(ctx context.Context, artistID int64) (*Summary, error) {
	var artist models.Artist
	if err := s.db.Where("deleted = ?", false).First(&artist, artistID).Error; err != nil {
		return nil, utils.NewNotFoundError("artist")
	}

	var expected models.ExpectedArtist
	err := s.db.Where("artist_id = ?", artistID).First(&expected).Error
	switch {
	case err == nil:
		// already resolved, reuse its mbid
	case errors.Is(err, gorm.ErrRecordNotFound):
		mbid, lookupErr := s.resolveMBID(ctx, artist.Name)
		if lookupErr != nil {
			return nil, lookupErr
		}
		expected = models.ExpectedArtist{ArtistID: artistID, Mbid: mbid, Name: artist.Name}
	default:
		return nil, utils.NewInternalError(err)
	}

	albums, err := s.fetchAlbums(ctx, expected.Mbid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expected.Name = artist.Name
	expected.UpdatedAt = now

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		// ExpectedArtist's primary key is the foreign artist id, not an
		// auto-increment column, so a plain Save would issue a no-op UPDATE
		// the first time through; upsert on conflict instead.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artist_id"}},
			UpdateAll: true,
		}).Create(&expected).Error; err != nil {
			return err
		}
		for _, a := range albums {
			if err := upsertExpectedAlbum(tx, artistID, a, now); err != nil {
				return err
			}
		}
		return tx.Where("expected_artist_id = ? AND updated_at < ?", artistID, now).
			Delete(&models.ExpectedAlbum{}).Error
	}); err != nil {
		return nil, utils.NewInternalError(err)
	}

	return s.ComputeSummary(artistID)
}

func (s *Service) resolveMBID(ctx context.Context, artistName string) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	match, err := s.client.FindArtistByName(lookupCtx, artistName)
	if err != nil {
		return "", mapUpstreamErr(err, "look up the artist on the metadata service")
	}
	if match == nil {
		return "", utils.NewNotFoundError("matching artist on the metadata service")
	}
	return match.MBID, nil
}

func (s *Service) fetchAlbums(ctx context.Context, mbid string) ([]metadata.Album, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	albums, err := s.client.FetchArtistAlbums(fetchCtx, mbid)
	if err != nil {
		return nil, mapUpstreamErr(err, "fetch the artist's albums from the metadata service")
	}
	return albums, nil
}

func upsertExpectedAlbum(tx *gorm.DB, artistID int64, a metadata.Album, now time.Time) error {
	normalized := normalizer.NormalizeTitle(a.Title)
	secondary := strings.Join(a.SecondaryTypes, ",")

	var existing models.ExpectedAlbum
	q := tx.Where("expected_artist_id = ? AND mb_release_group_id = ?", artistID, a.MBReleaseGroupID)
	err := q.First(&existing).Error
	switch {
	case err == nil:
		existing.Title = a.Title
		existing.NormalizedTitle = normalized
		existing.Year = a.Year
		existing.PrimaryType = a.PrimaryType
		existing.SecondaryTypes = secondary
		existing.UpdatedAt = now
		return tx.Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec := models.ExpectedAlbum{
			ExpectedArtistID: artistID,
			MBReleaseGroupID: a.MBReleaseGroupID,
			Title:            a.Title,
			NormalizedTitle:  normalized,
			Year:             a.Year,
			PrimaryType:      a.PrimaryType,
			SecondaryTypes:   secondary,
			UpdatedAt:        now,
		}
		return tx.Create(&rec).Error
	default:
		return err
	}
}

func mapUpstreamErr(err error, action string) error {
	var upstreamErr *metadata.UpstreamError
	if errors.As(err, &upstreamErr) {
		return utils.NewUpstreamHTTPError(fmt.Sprintf("failed to %s", action), upstreamErr.StatusCode, upstreamErr.Body)
	}
	return utils.NewUpstreamTimeoutError(fmt.Sprintf("timed out trying to %s: %v", action, err))
}

// ComputeSummary recomputes the owned/expected/missing breakdown from the
// currently-stored expected albums without contacting the metadata service.
func (s *Service) ComputeSummary(artistID int64) (*Summary, error) {
	var artist models.Artist
	if err := s.db.First(&artist, artistID).Error; err != nil {
		return nil, utils.NewNotFoundError("artist")
	}

	var expectedAlbums []models.ExpectedAlbum
	if err := s.db.Where("expected_artist_id = ?", artistID).Find(&expectedAlbums).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	var owned []models.Album
	if err := s.db.Where("artist_id = ? AND deleted = ? AND owned = ?", artistID, false, true).
		Find(&owned).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	var ignored []models.ExpectedIgnored
	s.db.Where("artist_id = ?", artistID).Find(&ignored)
	ignoredSet := make(map[int64]bool, len(ignored))
	for _, ig := range ignored {
		ignoredSet[ig.ExpectedAlbumID] = true
	}

	var settings models.ExpectedArtistSettings
	s.db.Where("artist_id = ?", artistID).First(&settings)
	settings.ArtistID = artistID

	overrideOwnedByExpected := make(map[int64]int64)
	if len(expectedAlbums) > 0 {
		expectedIDs := make([]int64, len(expectedAlbums))
		for i, e := range expectedAlbums {
			expectedIDs[i] = e.ID
		}
		var overrides []models.AlbumMatchOverride
		s.db.Where("expected_album_id IN ?", expectedIDs).Find(&overrides)
		for _, ov := range overrides {
			overrideOwnedByExpected[ov.ExpectedAlbumID] = ov.OwnedAlbumID
		}
	}

	ownedByNormalized := make(map[string][]models.Album)
	for _, a := range owned {
		ownedByNormalized[a.NameNormalized] = append(ownedByNormalized[a.NameNormalized], a)
	}

	matchedOwnedIDs := make(map[int64]bool)
	var missingAlbums []models.ExpectedAlbum

	for _, exp := range expectedAlbums {
		matchedOwnedID, matched := matchExpectedAlbum(exp, overrideOwnedByExpected, ownedByNormalized, owned)
		if matched {
			if matchedOwnedID != 0 {
				matchedOwnedIDs[matchedOwnedID] = true
			}
			continue
		}

		if ignoredSet[exp.ID] {
			continue
		}

		if isIncludedByPreference(exp, settings) {
			missingAlbums = append(missingAlbums, exp)
		}
	}

	var matchedOwnedAlbums, unmatchedOwnedAlbums []models.Album
	for _, o := range owned {
		if matchedOwnedIDs[o.ID] {
			matchedOwnedAlbums = append(matchedOwnedAlbums, o)
		} else {
			unmatchedOwnedAlbums = append(unmatchedOwnedAlbums, o)
		}
	}

	var completionPct *int
	if len(expectedAlbums) > 0 {
		// Albums excluded by the inclusion preference (e.g. a live EP with
		// includeLive=false) still count toward completion: they are not
		// "missing", just not wanted.
		completedCount := len(expectedAlbums) - len(missingAlbums)
		pct := int((float64(completedCount) / float64(len(expectedAlbums)) * 100) + 0.5)
		completionPct = &pct
	}

	return &Summary{
		Artist:               artist,
		Settings:             settings,
		OwnedCount:           len(owned),
		ExpectedCount:        len(expectedAlbums),
		MissingCount:         len(missingAlbums),
		IgnoredCount:         len(ignored),
		CompletionPct:        completionPct,
		MissingAlbums:        missingAlbums,
		MatchedOwnedAlbums:   matchedOwnedAlbums,
		UnmatchedOwnedAlbums: unmatchedOwnedAlbums,
	}, nil
}

// matchExpectedAlbum checks, in order: a manual override, an exact
// normalized-title match, then a strong title-alias match. It returns the
// owned album id it matched against; for an override that is the override's
// stored owned album id, returned without checking it against the loaded
// owned rows.
func matchExpectedAlbum(exp models.ExpectedAlbum, overrides map[int64]int64, byNormalized map[string][]models.Album, owned []models.Album) (int64, bool) {
	if ownedID, ok := overrides[exp.ID]; ok {
		return ownedID, true
	}

	if candidates, ok := byNormalized[exp.NormalizedTitle]; ok && len(candidates) > 0 {
		return candidates[0].ID, true
	}

	for _, o := range owned {
		if normalizer.IsStrongTitleAliasMatch(o.NameNormalized, exp.NormalizedTitle, titleOverlapMin) {
			return o.ID, true
		}
	}

	return 0, false
}

func isIncludedByPreference(exp models.ExpectedAlbum, settings models.ExpectedArtistSettings) bool {
	if strings.EqualFold(exp.PrimaryType, "compilation") && !settings.IncludeCompilations {
		return false
	}
	if !settings.IncludeLive && strings.Contains(strings.ToLower(exp.SecondaryTypes), "live") {
		return false
	}
	return true
}

// IgnoreExpectedAlbum excludes an expected album from the missing list for
// this artist. Idempotent.
func (s *Service) IgnoreExpectedAlbum(artistID, expectedAlbumID int64) error {
	if err := s.assertExpectedAlbumBelongsToArtist(artistID, expectedAlbumID); err != nil {
		return err
	}
	rec := models.ExpectedIgnored{ArtistID: artistID, ExpectedAlbumID: expectedAlbumID, CreatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
		return utils.NewInternalError(err)
	}
	return nil
}

// UnignoreExpectedAlbum reverses IgnoreExpectedAlbum. Idempotent.
func (s *Service) UnignoreExpectedAlbum(artistID, expectedAlbumID int64) error {
	if err := s.assertExpectedAlbumBelongsToArtist(artistID, expectedAlbumID); err != nil {
		return err
	}
	if err := s.db.Where("artist_id = ? AND expected_album_id = ?", artistID, expectedAlbumID).
		Delete(&models.ExpectedIgnored{}).Error; err != nil {
		return utils.NewInternalError(err)
	}
	return nil
}

func (s *Service) assertExpectedAlbumBelongsToArtist(artistID, expectedAlbumID int64) error {
	var exp models.ExpectedAlbum
	if err := s.db.Where("id = ? AND expected_artist_id = ?", expectedAlbumID, artistID).
		First(&exp).Error; err != nil {
		return utils.NewNotFoundError("expected album")
	}
	return nil
}

// UpdateArtistSettings replaces the per-artist inclusion toggles. It does
// not itself recompute the summary; callers should follow with
// ComputeSummary if they need the refreshed breakdown.
func (s *Service) UpdateArtistSettings(artistID int64, includeLive, includeCompilations bool) (*models.ExpectedArtistSettings, error) {
	settings := models.ExpectedArtistSettings{
		ArtistID:            artistID,
		IncludeLive:         includeLive,
		IncludeCompilations: includeCompilations,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artist_id"}},
		UpdateAll: true,
	}).Create(&settings).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &settings, nil
}
