// Package services holds the Artist/Album query layer backing the library
// HTTP surface — search, pagination, the owned toggle, the legacy overview
// join, and the wishlist.
package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"crate/internal/models"
	"crate/internal/pagination"
	"crate/internal/utils"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AlbumListParams filters and paginates ListAlbums. Owned is nil to mean
// "don't filter on owned".
type AlbumListParams struct {
	Search   string
	Page     int
	PageSize int
	Owned    *bool
}

type AlbumListResult struct {
	Albums     []models.Album
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// ListAlbums searches owned-library albums by lower-cased title substring,
// optionally filtered by owned, ordered by title.
func (r *Repository) ListAlbums(p AlbumListParams) (*AlbumListResult, error) {
	page, pageSize := normalizePage(p.Page, p.PageSize)

	q := r.db.Model(&models.Album{}).Where("deleted = ?", false)
	if p.Search != "" {
		q = q.Where("lower(title) LIKE ?", "%"+strings.ToLower(p.Search)+"%")
	}
	if p.Owned != nil {
		q = q.Where("owned = ?", *p.Owned)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	var albums []models.Album
	if err := q.Order("title ASC").
		Limit(pageSize).
		Offset(pagination.CalculateOffset(page, pageSize)).
		Find(&albums).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &AlbumListResult{Albums: albums, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}, nil
}

// SetAlbumOwned toggles the user-settable owned flag, preserved across
// scans.
func (r *Repository) SetAlbumOwned(albumID int64, owned bool) (*models.Album, error) {
	var album models.Album
	if err := r.db.First(&album, albumID).Error; err != nil {
		return nil, utils.NewNotFoundError("album")
	}
	if err := r.db.Model(&album).Update("owned", owned).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	album.Owned = owned
	return &album, nil
}

// ArtistListResult is the offset/limit-paginated result of ListArtists.
type ArtistListResult struct {
	Artists []models.Artist
	Total   int64
}

// ListArtists searches non-deleted artists by lower-cased name substring,
// paginated by raw offset/limit (rather than ListAlbums' page/pageSize)
// since artist listings are typically consumed as an infinite-scroll feed.
func (r *Repository) ListArtists(search string, offset, limit int) (*ArtistListResult, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	q := r.db.Model(&models.Artist{}).Where("deleted = ?", false)
	if search != "" {
		q = q.Where("lower(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	var artists []models.Artist
	if err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&artists).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &ArtistListResult{Artists: artists, Total: total}, nil
}

func (r *Repository) GetArtist(artistID int64) (*models.Artist, error) {
	var artist models.Artist
	if err := r.db.First(&artist, artistID).Error; err != nil {
		return nil, utils.NewNotFoundError("artist")
	}
	return &artist, nil
}

func (r *Repository) GetArtistBySlug(slug string) (*models.Artist, error) {
	var artist models.Artist
	if err := r.db.Where("slug = ?", slug).First(&artist).Error; err != nil {
		return nil, utils.NewNotFoundError("artist")
	}
	return &artist, nil
}

// WantedAlbumWithAliases pairs a legacy wanted-album row with its alternate
// titles.
type WantedAlbumWithAliases struct {
	WantedAlbum models.WantedAlbum
	Aliases     []models.AlbumAlias
}

// ArtistOverview is the legacy owned+wanted+missing breakdown, predating the
// metadata-service sync; GET /api/artist/:id/overview is its only consumer.
type ArtistOverview struct {
	Artist       models.Artist
	OwnedAlbums  []models.Album
	WantedAlbums []WantedAlbumWithAliases
	Missing      []models.WantedAlbum
}

func (r *Repository) GetArtistOverview(artistID int64) (*ArtistOverview, error) {
	artist, err := r.GetArtist(artistID)
	if err != nil {
		return nil, err
	}

	var owned []models.Album
	if err := r.db.Where("artist_id = ? AND deleted = ? AND owned = ?", artistID, false, true).
		Find(&owned).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	var wanted []models.WantedAlbum
	if err := r.db.Where("artist_id = ?", artistID).Find(&wanted).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	ownedTitles := make(map[string]bool, len(owned))
	for _, o := range owned {
		ownedTitles[o.Title] = true
	}

	wantedWithAliases := make([]WantedAlbumWithAliases, 0, len(wanted))
	var missing []models.WantedAlbum
	for _, w := range wanted {
		var aliases []models.AlbumAlias
		if err := r.db.Where("wanted_album_id = ?", w.ID).Find(&aliases).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		wantedWithAliases = append(wantedWithAliases, WantedAlbumWithAliases{WantedAlbum: w, Aliases: aliases})

		if !wantedAlbumOwned(w, aliases, ownedTitles) {
			missing = append(missing, w)
		}
	}

	return &ArtistOverview{
		Artist:       *artist,
		OwnedAlbums:  owned,
		WantedAlbums: wantedWithAliases,
		Missing:      missing,
	}, nil
}

// wantedAlbumOwned reports whether w (or one of its legacy aliases) matches
// an owned album's title by raw equality — the legacy path predates the
// Normalizer and never applied it.
func wantedAlbumOwned(w models.WantedAlbum, aliases []models.AlbumAlias, ownedTitles map[string]bool) bool {
	if ownedTitles[w.Title] {
		return true
	}
	for _, a := range aliases {
		if ownedTitles[a.AliasTitle] {
			return true
		}
	}
	return false
}

// Stats is the GET /api/stats payload.
type Stats struct {
	Artists    int64      `json:"artists"`
	Albums     int64      `json:"albums"`
	Tracks     int64      `json:"tracks"`
	LastScanAt *time.Time `json:"lastScanAt"`
}

func (r *Repository) GetStats() (*Stats, error) {
	var s Stats
	if err := r.db.Model(&models.Artist{}).Where("deleted = ?", false).Count(&s.Artists).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	if err := r.db.Model(&models.Album{}).Where("deleted = ?", false).Count(&s.Albums).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	if err := r.db.Model(&models.Track{}).Where("deleted = ?", false).Count(&s.Tracks).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	var state models.ScanState
	if err := r.db.First(&state, 1).Error; err == nil {
		s.LastScanAt = state.FinishedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewInternalError(err)
	}

	return &s, nil
}

// WishlistRequest accepts either an expectedAlbumId reference or a manual
// artist/title/year entry.
type WishlistRequest struct {
	ExpectedAlbumID *int64
	ArtistID        *int64
	Title           string
	Year            *int
	Source          string
}

// AddWishlistItem is idempotent on ExpectedAlbumID: re-adding an
// already-wishlisted expected album returns the existing row.
func (r *Repository) AddWishlistItem(req WishlistRequest) (*models.WishlistAlbum, error) {
	if req.ExpectedAlbumID != nil {
		var existing models.WishlistAlbum
		err := r.db.Where("expected_album_id = ?", *req.ExpectedAlbumID).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewInternalError(err)
		}

		item := models.WishlistAlbum{ExpectedAlbumID: req.ExpectedAlbumID, Status: "wanted"}
		if err := r.db.Create(&item).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		return &item, nil
	}

	if req.ArtistID == nil || req.Title == "" {
		return nil, utils.NewValidationError("either expectedAlbumId or artistId and title is required")
	}

	item := models.WishlistAlbum{
		ArtistID: req.ArtistID,
		Title:    req.Title,
		Year:     req.Year,
		Source:   req.Source,
		Status:   "wanted",
	}
	if err := r.db.Create(&item).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &item, nil
}

func (r *Repository) CountWishlist() (int64, error) {
	var count int64
	if err := r.db.Model(&models.WishlistAlbum{}).Count(&count).Error; err != nil {
		return 0, utils.NewInternalError(err)
	}
	return count, nil
}

// ListRecentAlbums returns the most recently seen albums, newest first, for
// the dashboard's "recent" panel.
func (r *Repository) ListRecentAlbums(limit int) ([]models.Album, error) {
	if limit <= 0 {
		limit = 10
	}
	var albums []models.Album
	if err := r.db.Where("deleted = ?", false).
		Order("last_seen DESC").
		Limit(limit).
		Find(&albums).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return albums, nil
}
