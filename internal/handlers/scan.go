package handlers

import (
	"github.com/gofiber/fiber/v2"

	"crate/internal/scanner"
	"crate/internal/utils"
)

// ScanHandler serves the /api/scan/* surface: start/cancel/status/skipped.
type ScanHandler struct {
	scanner *scanner.Scanner
}

func NewScanHandler(s *scanner.Scanner) *ScanHandler {
	return &ScanHandler{scanner: s}
}

const (
	defaultScanMaxDepth = 3
	minScanMaxDepth     = 1
	maxScanMaxDepth     = 20
)

// StartScan handles POST /api/scan/start body {recursive?, maxDepth?, artistId?}
func (h *ScanHandler) StartScan(c *fiber.Ctx) error {
	var body struct {
		Recursive *bool `json:"recursive"`
		MaxDepth  *int  `json:"maxDepth"`
		ArtistID  int64 `json:"artistId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	recursive := true
	if body.Recursive != nil {
		recursive = *body.Recursive
	}
	maxDepth := defaultScanMaxDepth
	if body.MaxDepth != nil {
		maxDepth = *body.MaxDepth
	}
	if maxDepth < minScanMaxDepth || maxDepth > maxScanMaxDepth {
		return utils.WriteDomainError(c, utils.NewValidationError("maxDepth must be between 1 and 20"))
	}

	started, status := h.scanner.StartScan(scanner.Options{Recursive: recursive, MaxDepth: maxDepth, ArtistID: body.ArtistID})
	return c.JSON(fiber.Map{"started": started, "status": status})
}

// CancelScan handles POST /api/scan/cancel
func (h *ScanHandler) CancelScan(c *fiber.Ctx) error {
	cancelled := h.scanner.RequestCancel()
	status, err := h.scanner.GetStatus()
	if err != nil {
		return utils.WriteDomainError(c, utils.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"cancelled": cancelled, "status": status.Status})
}

// ScanStatus handles GET /api/scan/status
func (h *ScanHandler) ScanStatus(c *fiber.Ctx) error {
	status, err := h.scanner.GetStatus()
	if err != nil {
		return utils.WriteDomainError(c, utils.NewInternalError(err))
	}
	return c.JSON(status)
}

// ScanSkipped handles GET /api/scan/skipped?limit=1..1000
func (h *ScanHandler) ScanSkipped(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 {
		limit = 1
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := h.scanner.ListSkipped(limit)
	if err != nil {
		return utils.WriteDomainError(c, utils.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"data": rows})
}
