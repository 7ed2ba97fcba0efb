// Package models holds the GORM-mapped schema for the catalog store.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Artist is a top-level library directory, identified by its on-disk name.
type Artist struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	APIKey    uuid.UUID `gorm:"type:text;uniqueIndex;not null" json:"apiKey"`
	Name      string    `gorm:"uniqueIndex;type:varchar(500) collate nocase;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Path      string    `gorm:"size:2048;not null" json:"path"`
	LastSeen  time.Time `gorm:"index;not null" json:"lastSeen"`
	Deleted   bool      `gorm:"index;not null;default:false" json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Albums []Album `gorm:"foreignKey:ArtistID" json:"-"`
}

func (Artist) TableName() string { return "artists" }

func (a *Artist) BeforeCreate(tx *gorm.DB) error {
	if a.APIKey == uuid.Nil {
		a.APIKey = uuid.New()
	}
	return nil
}

// Album is identified by its virtual path (see scanner.virtualAlbumPath), never a
// real filesystem location.
type Album struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	APIKey         uuid.UUID `gorm:"type:text;uniqueIndex;not null" json:"apiKey"`
	ArtistID       int64     `gorm:"index;not null" json:"artistId"`
	Path           string    `gorm:"uniqueIndex;size:2048;not null" json:"path"`
	Title          string    `gorm:"size:500;not null" json:"title"`
	NameNormalized string    `gorm:"index;size:500;not null" json:"-"`
	Formats        string    `gorm:"size:255" json:"formats"` // comma-separated extension multiset
	TrackCount     int       `gorm:"not null;default:0" json:"trackCount"`
	LastFileMtime  time.Time `json:"lastFileMtime"`
	Owned          bool      `gorm:"index;not null" json:"owned"`
	LastSeen       time.Time `gorm:"index;not null" json:"lastSeen"`
	Deleted        bool      `gorm:"index;not null;default:false" json:"deleted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Artist Artist  `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Tracks []Track `gorm:"foreignKey:AlbumID" json:"-"`
}

func (Album) TableName() string { return "albums" }

func (a *Album) BeforeCreate(tx *gorm.DB) error {
	if a.APIKey == uuid.Nil {
		a.APIKey = uuid.New()
	}
	return nil
}

// Track is a single admitted audio file belonging to an Album.
type Track struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AlbumID   int64     `gorm:"index;not null" json:"albumId"`
	Path      string    `gorm:"uniqueIndex;size:2048;not null" json:"path"`
	Ext       string    `gorm:"size:16;not null" json:"ext"`
	Mtime     time.Time `json:"mtime"`
	LastSeen  time.Time `gorm:"index;not null" json:"lastSeen"`
	Deleted   bool      `gorm:"index;not null;default:false" json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Track) TableName() string { return "tracks" }

// FileIndex caches tag extraction and filesystem identity per path so an
// unchanged file skips re-parsing on the next scan.
type FileIndex struct {
	Path           string    `gorm:"primaryKey;size:2048" json:"path"`
	Mtime          time.Time `gorm:"not null" json:"mtime"`
	Size           int64     `gorm:"not null" json:"size"`
	InodeKey       string    `gorm:"size:128;index" json:"inodeKey"`
	FileHash       string    `gorm:"size:16;index" json:"fileHash"`
	TagAlbum       string    `gorm:"size:500" json:"tagAlbum"`
	TagAlbumArtist string    `gorm:"size:500" json:"tagAlbumArtist"`
	TagArtist      string    `gorm:"size:500" json:"tagArtist"`
	TagYear        string    `gorm:"size:8" json:"tagYear"`
	TagTitle       string    `gorm:"size:500" json:"tagTitle"`
	LastScanAt     time.Time `gorm:"index;not null" json:"lastScanAt"`
}

func (FileIndex) TableName() string { return "file_index" }

// ScanSkipped is a per-file skip record for a single scan run.
type ScanSkipped struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ScanStartedAt time.Time `gorm:"index;not null" json:"scanStartedAt"`
	FilePath      string    `gorm:"size:2048;not null" json:"filePath"`
	Reason        string    `gorm:"size:255;not null" json:"reason"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (ScanSkipped) TableName() string { return "scan_skipped" }

// ScanState is the singleton progress/status row for the Scanner.
type ScanState struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	Status              string    `gorm:"size:32;not null;default:'idle'" json:"status"` // idle|running|cancelled|error
	StartedAt           time.Time `json:"startedAt"`
	FinishedAt          *time.Time `json:"finishedAt"`
	CurrentPath         string    `gorm:"size:2048" json:"currentPath"`
	ScannedCount        int       `gorm:"not null;default:0" json:"scannedCount"`
	SkippedCount        int       `gorm:"not null;default:0" json:"skippedCount"`
	SkippedReasonsJSON  string    `gorm:"type:text" json:"-"`
	ErrorMessage        string    `gorm:"type:text" json:"errorMessage,omitempty"`
	CancelRequested     bool      `gorm:"not null;default:false" json:"-"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (ScanState) TableName() string { return "scan_state" }

// ExpectedArtist is the per-artist discography-sync pointer to the external
// metadata service.
type ExpectedArtist struct {
	ArtistID  int64     `gorm:"primaryKey" json:"artistId"`
	Mbid      string    `gorm:"uniqueIndex;size:64" json:"mbid"`
	Name      string    `gorm:"size:500;not null" json:"name"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (ExpectedArtist) TableName() string { return "expected_artists" }

// ExpectedAlbum is a single release-group returned by the metadata service
// for an artist, refreshed on every sync.
type ExpectedAlbum struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExpectedArtistID int64     `gorm:"index:idx_expected_album_artist_mbrg,unique;not null" json:"expectedArtistId"`
	MBReleaseGroupID string    `gorm:"index:idx_expected_album_artist_mbrg,unique;size:64" json:"mbReleaseGroupId"`
	Title            string    `gorm:"size:500;not null" json:"title"`
	NormalizedTitle  string    `gorm:"index;size:500;not null" json:"normalizedTitle"`
	Year             *int      `json:"year"`
	PrimaryType      string    `gorm:"size:64" json:"primaryType"`
	SecondaryTypes   string    `gorm:"size:255" json:"secondaryTypes"` // comma-joined, ordered
	UpdatedAt        time.Time `gorm:"not null" json:"updatedAt"`
}

func (ExpectedAlbum) TableName() string { return "expected_albums" }

// ExpectedIgnored marks an expected album the user has chosen to exclude
// from the missing-albums summary for a given artist.
type ExpectedIgnored struct {
	ArtistID        int64     `gorm:"primaryKey" json:"artistId"`
	ExpectedAlbumID int64     `gorm:"primaryKey" json:"expectedAlbumId"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (ExpectedIgnored) TableName() string { return "expected_ignored_albums" }

// ExpectedArtistSettings holds per-artist inclusion toggles for the summary
// computation.
type ExpectedArtistSettings struct {
	ArtistID            int64 `gorm:"primaryKey" json:"artistId"`
	IncludeLive         bool  `gorm:"not null;default:false" json:"includeLive"`
	IncludeCompilations bool  `gorm:"not null;default:false" json:"includeCompilations"`
}

func (ExpectedArtistSettings) TableName() string { return "expected_artist_settings" }

// AlbumMatchOverride is a manual 1:1 link forcing an expected album to match
// an owned album regardless of title comparison.
type AlbumMatchOverride struct {
	ExpectedAlbumID int64     `gorm:"primaryKey" json:"expectedAlbumId"`
	OwnedAlbumID    int64     `gorm:"uniqueIndex;not null" json:"ownedAlbumId"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (AlbumMatchOverride) TableName() string { return "album_match_overrides" }

// WishlistAlbum tracks albums the user wants to acquire, either tied to an
// expected album or supplied manually.
type WishlistAlbum struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ExpectedAlbumID *int64 `gorm:"uniqueIndex" json:"expectedAlbumId"`
	ArtistID        *int64 `json:"artistId,omitempty"`
	Title           string `gorm:"size:500" json:"title,omitempty"`
	Year            *int   `json:"year,omitempty"`
	Source          string `gorm:"size:64" json:"source,omitempty"`
	Status          string `gorm:"size:32;not null;default:'wanted'" json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (WishlistAlbum) TableName() string { return "wishlist_albums" }

// Settings is the singleton configurable-at-runtime settings row.
type Settings struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	DataDir          string    `gorm:"size:1024;not null" json:"dataDir"`
	LibraryMountPath string    `gorm:"size:1024;not null" json:"libraryMountPath"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Settings) TableName() string { return "settings" }

// WantedAlbum is the legacy manual want-list, pre-dating the metadata-service
// sync. Populated only by direct legacy API calls, never by the Scanner or
// Discography Service; kept only because GET /api/artist/:id/overview still
// reads it.
type WantedAlbum struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ArtistID  int64     `gorm:"index;not null" json:"artistId"`
	Title     string    `gorm:"size:500;not null" json:"title"`
	Year      *int      `json:"year,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WantedAlbum) TableName() string { return "wanted_albums" }

// AlbumAlias is a legacy alternate-title linkage for WantedAlbum.
type AlbumAlias struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	WantedAlbumID int64  `gorm:"index;not null" json:"wantedAlbumId"`
	AliasTitle    string `gorm:"size:500;not null" json:"aliasTitle"`
}

func (AlbumAlias) TableName() string { return "album_aliases" }

// AllModels lists every model AutoMigrate and the additive-migration scan
// must cover.
func AllModels() []interface{} {
	return []interface{}{
		&Artist{},
		&Album{},
		&Track{},
		&FileIndex{},
		&ScanSkipped{},
		&ScanState{},
		&ExpectedArtist{},
		&ExpectedAlbum{},
		&ExpectedIgnored{},
		&ExpectedArtistSettings{},
		&AlbumMatchOverride{},
		&WishlistAlbum{},
		&Settings{},
		&WantedAlbum{},
		&AlbumAlias{},
	}
}
