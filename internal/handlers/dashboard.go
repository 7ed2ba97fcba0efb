package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crate/internal/discography"
	"crate/internal/models"
	"crate/internal/services"
	"crate/internal/utils"
)

// DashboardHandler serves GET /api/stats and GET /api/dashboard, and
// POST /api/wishlist.
type DashboardHandler struct {
	repo        *services.Repository
	discography *discography.Service
	db          *gorm.DB
}

func NewDashboardHandler(repo *services.Repository, d *discography.Service, db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{repo: repo, discography: d, db: db}
}

// Stats handles GET /api/stats
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.repo.GetStats()
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(stats)
}

// Dashboard handles GET /api/dashboard: stats + recent albums + aggregate
// missing-album total across every synced artist + wishlist count.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.repo.GetStats()
	if err != nil {
		return utils.WriteDomainError(c, err)
	}

	recent, err := h.repo.ListRecentAlbums(10)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}

	wishlistCount, err := h.repo.CountWishlist()
	if err != nil {
		return utils.WriteDomainError(c, err)
	}

	missingTotal, err := h.totalMissingAcrossArtists()
	if err != nil {
		return utils.WriteDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"stats":         stats,
		"recent":        recent,
		"missingTotal":  missingTotal,
		"wishlistCount": wishlistCount,
	})
}

func (h *DashboardHandler) totalMissingAcrossArtists() (int, error) {
	var artistIDs []int64
	if err := h.db.Model(&models.ExpectedArtist{}).Pluck("artist_id", &artistIDs).Error; err != nil {
		return 0, utils.NewInternalError(err)
	}

	total := 0
	for _, id := range artistIDs {
		summary, err := h.discography.ComputeSummary(id)
		if err != nil {
			continue
		}
		total += summary.MissingCount
	}
	return total, nil
}

// AddWishlistItem handles POST /api/wishlist body {expectedAlbumId} or
// {artistId,title,year?,source}
func (h *DashboardHandler) AddWishlistItem(c *fiber.Ctx) error {
	var body struct {
		ExpectedAlbumID *int64 `json:"expectedAlbumId"`
		ArtistID        *int64 `json:"artistId"`
		Title           string `json:"title"`
		Year            *int   `json:"year"`
		Source          string `json:"source"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.repo.AddWishlistItem(services.WishlistRequest{
		ExpectedAlbumID: body.ExpectedAlbumID,
		ArtistID:        body.ArtistID,
		Title:           body.Title,
		Year:            body.Year,
		Source:          body.Source,
	})
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(item)
}
