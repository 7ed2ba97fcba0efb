package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"crate/internal/discography"
	"crate/internal/utils"
)

// ExpectedHandler serves /api/expected/artist/:id/* — the reconciliation
// surface backed by the Discography Service.
type ExpectedHandler struct {
	discography *discography.Service
}

func NewExpectedHandler(d *discography.Service) *ExpectedHandler {
	return &ExpectedHandler{discography: d}
}

func parseArtistID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// Sync handles POST /api/expected/artist/:id/sync
func (h *ExpectedHandler) Sync(c *fiber.Ctx) error {
	artistID, err := parseArtistID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid artist id")
	}

	summary, err := h.discography.SyncExpectedForArtist(c.Context(), artistID)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(summary)
}

// Summary handles GET /api/expected/artist/:id/summary
func (h *ExpectedHandler) Summary(c *fiber.Ctx) error {
	artistID, err := parseArtistID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid artist id")
	}

	summary, err := h.discography.ComputeSummary(artistID)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(summary)
}

// Ignore handles POST /api/expected/artist/:id/ignore body {expectedAlbumId}
func (h *ExpectedHandler) Ignore(c *fiber.Ctx) error {
	return h.setIgnored(c, true)
}

// Unignore handles POST /api/expected/artist/:id/unignore body {expectedAlbumId}
func (h *ExpectedHandler) Unignore(c *fiber.Ctx) error {
	return h.setIgnored(c, false)
}

func (h *ExpectedHandler) setIgnored(c *fiber.Ctx, ignore bool) error {
	artistID, err := parseArtistID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid artist id")
	}

	var body struct {
		ExpectedAlbumID int64 `json:"expectedAlbumId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if ignore {
		err = h.discography.IgnoreExpectedAlbum(artistID, body.ExpectedAlbumID)
	} else {
		err = h.discography.UnignoreExpectedAlbum(artistID, body.ExpectedAlbumID)
	}
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// GetSettings handles GET /api/expected/artist/:id/settings
func (h *ExpectedHandler) GetSettings(c *fiber.Ctx) error {
	artistID, err := parseArtistID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid artist id")
	}

	summary, err := h.discography.ComputeSummary(artistID)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(summary.Settings)
}

// UpdateSettings handles POST /api/expected/artist/:id/settings body
// {includeLive, includeCompilations}
func (h *ExpectedHandler) UpdateSettings(c *fiber.Ctx) error {
	artistID, err := parseArtistID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid artist id")
	}

	var body struct {
		IncludeLive         bool `json:"includeLive"`
		IncludeCompilations bool `json:"includeCompilations"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	settings, err := h.discography.UpdateArtistSettings(artistID, body.IncludeLive, body.IncludeCompilations)
	if err != nil {
		return utils.WriteDomainError(c, err)
	}
	return c.JSON(settings)
}
