package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crate/internal/models"
	"crate/internal/utils"
)

// SettingsHandler serves GET/PUT /api/settings, the singleton row holding the
// data directory and library mount path the first-run wizard writes.
type SettingsHandler struct {
	db *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

const settingsRowID = 1

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	var settings models.Settings
	err := h.db.First(&settings, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(models.Settings{ID: settingsRowID})
	}
	if err != nil {
		return utils.WriteDomainError(c, utils.NewInternalError(err))
	}
	return c.JSON(settings)
}

// UpdateSettings handles PUT /api/settings body {dataDir, libraryMountPath}
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var body struct {
		DataDir          string `json:"dataDir"`
		LibraryMountPath string `json:"libraryMountPath"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.DataDir == "" || body.LibraryMountPath == "" {
		return utils.WriteDomainError(c, utils.NewValidationError("dataDir and libraryMountPath are required"))
	}

	settings := models.Settings{
		ID:               settingsRowID,
		DataDir:          body.DataDir,
		LibraryMountPath: body.LibraryMountPath,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&settings).Error
	if err != nil {
		return utils.WriteDomainError(c, utils.NewInternalError(err))
	}

	return c.JSON(settings)
}
