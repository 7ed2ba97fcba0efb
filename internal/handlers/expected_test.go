package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"crate/internal/discography"
	"crate/internal/metadata"
)

func TestExpectedSummaryNotFoundForUnknownArtist(t *testing.T) {
	db := openHandlerTestDB(t)
	svc := discography.New(db, metadata.NewClient(metadata.Config{}))
	h := NewExpectedHandler(svc)

	app := fiber.New()
	app.Get("/api/expected/artist/:id/summary", h.Summary)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/expected/artist/999/summary", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExpectedUpdateSettingsPersists(t *testing.T) {
	db := openHandlerTestDB(t)
	album := seedHandlerArtistAlbum(t, db, "Thrice", "Vheissu", true)
	svc := discography.New(db, metadata.NewClient(metadata.Config{}))
	h := NewExpectedHandler(svc)

	app := fiber.New()
	app.Post("/api/expected/artist/:id/settings", h.UpdateSettings)

	req := httptest.NewRequest(http.MethodPost,
		"/api/expected/artist/"+strconv.FormatInt(album.ArtistID, 10)+"/settings",
		strings.NewReader(`{"includeLive":true,"includeCompilations":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		IncludeLive         bool `json:"includeLive"`
		IncludeCompilations bool `json:"includeCompilations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.IncludeLive)
	require.True(t, body.IncludeCompilations)
}
