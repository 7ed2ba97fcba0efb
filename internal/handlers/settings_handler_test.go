package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"crate/internal/models"
)

func TestGetSettingsReturnsZeroValueBeforeFirstRun(t *testing.T) {
	db := openHandlerTestDB(t)
	h := NewSettingsHandler(db)

	app := fiber.New()
	app.Get("/api/settings", h.GetSettings)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/settings", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var settings models.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	require.Empty(t, settings.DataDir)
}

func TestUpdateSettingsCreatesThenUpdatesSingletonRow(t *testing.T) {
	db := openHandlerTestDB(t)
	h := NewSettingsHandler(db)

	app := fiber.New()
	app.Put("/api/settings", h.UpdateSettings)

	body := `{"dataDir":"/data","libraryMountPath":"/music"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var settings models.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	require.Equal(t, "/data", settings.DataDir)

	body = `{"dataDir":"/data2","libraryMountPath":"/music2"}`
	req = httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	require.Equal(t, "/data2", settings.DataDir)

	var count int64
	require.NoError(t, db.Model(&models.Settings{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpdateSettingsRejectsMissingFields(t *testing.T) {
	db := openHandlerTestDB(t)
	h := NewSettingsHandler(db)

	app := fiber.New()
	app.Put("/api/settings", h.UpdateSettings)

	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
