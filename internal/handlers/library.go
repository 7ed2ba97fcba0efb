package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"crate/internal/pagination"
	"crate/internal/services"
	"crate/internal/utils"
)

// LibraryHandler serves the read-only /api/library/* directory surface and
// the owned-flag toggle backing the UI's catalog view.
type LibraryHandler struct {
	repo *services.Repository
}

func NewLibraryHandler(repo *services.Repository) *LibraryHandler {
	return &LibraryHandler{repo: repo}
}

// ListAlbums handles GET /api/library/albums?search&page&pageSize&owned=0|1
func (h *LibraryHandler) ListAlbums(c *fiber.Ctx) error {
	page, pageSize := pagination.GetPaginationParams(c, 1, 25)

	params := services.AlbumListParams{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
	if ownedParam := c.Query("owned"); ownedParam != "" {
		owned := ownedParam == "1" || ownedParam == "true"
		params.Owned = &owned
	}

	result, err := h.repo.ListAlbums(params)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": result.Albums,
		"pagination": pagination.Calculate(result.Total, result.Page, result.PageSize),
	})
}

// SetAlbumOwned handles PUT /api/library/albums/:id/owned body {owned:bool}
func (h *LibraryHandler) SetAlbumOwned(c *fiber.Ctx) error {
	albumID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid album id")
	}

	var body struct {
		Owned bool `json:"owned"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	album, err := h.repo.SetAlbumOwned(albumID, body.Owned)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(album)
}

// ListArtists handles GET /api/library/artists?search=&offset=&limit=
func (h *LibraryHandler) ListArtists(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	result, err := h.repo.ListArtists(c.Query("search"), offset, limit)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"data":       result.Artists,
		"pagination": pagination.CalculateWithOffset(result.Total, offset, limit),
	})
}

// GetArtist handles GET /api/library/artists/:id
func (h *LibraryHandler) GetArtist(c *fiber.Ctx) error {
	artistID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid artist id")
	}
	artist, err := h.repo.GetArtist(artistID)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(artist)
}

// GetArtistBySlug handles GET /api/artist/by-slug/:slug
func (h *LibraryHandler) GetArtistBySlug(c *fiber.Ctx) error {
	artist, err := h.repo.GetArtistBySlug(c.Params("slug"))
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(artist)
}

// GetArtistOverview handles GET /api/artist/:id/overview
func (h *LibraryHandler) GetArtistOverview(c *fiber.Ctx) error {
	artistID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid artist id")
	}
	overview, err := h.repo.GetArtistOverview(artistID)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(overview)
}
