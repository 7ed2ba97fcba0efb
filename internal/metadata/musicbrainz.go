package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ArtistMatch is the ranked top candidate from findArtistByName.
type ArtistMatch struct {
	MBID  string
	Name  string
	Score int
}

// Album is a single release-group MusicBrainz reports for an artist.
type Album struct {
	MBReleaseGroupID string
	Title            string
	Year             *int
	PrimaryType      string
	SecondaryTypes   []string
}

type artistSearchResponse struct {
	Artists []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"artists"`
}

// FindArtistByName queries the artist search endpoint and ranks candidates
// by score plus an exact-case-insensitive-match bonus minus result position,
// returning the top candidate or nil when the search returns nothing.
func (c *Client) FindArtistByName(ctx context.Context, name string) (*ArtistMatch, error) {
	query := fmt.Sprintf(`artist:"%s"`, name)
	path := fmt.Sprintf("/artist?query=%s&limit=5&fmt=json", url.QueryEscape(query))

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp artistSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode artist search response: %w", err)
	}
	if len(resp.Artists) == 0 {
		return nil, nil
	}

	var best *ArtistMatch
	bestRank := -1 << 31
	for position, candidate := range resp.Artists {
		rank := candidate.Score - position
		if strings.EqualFold(candidate.Name, name) {
			rank += 20
		}
		if rank > bestRank {
			bestRank = rank
			best = &ArtistMatch{MBID: candidate.ID, Name: candidate.Name, Score: candidate.Score}
		}
	}
	return best, nil
}

type releaseGroupSearchResponse struct {
	ReleaseGroupCount int `json:"release-group-count"`
	ReleaseGroups     []struct {
		ID                string   `json:"id"`
		Title             string   `json:"title"`
		PrimaryType       string   `json:"primary-type"`
		SecondaryTypes    []string `json:"secondary-types"`
		FirstReleaseDate  string   `json:"first-release-date"`
	} `json:"release-groups"`
}

var leadingYearRe = regexp.MustCompile(`^\d{4}`)

const albumsPageSize = 100

// FetchArtistAlbums paginates the release-group endpoint for mbid, keeping
// only Album and Compilation primary types.
func (c *Client) FetchArtistAlbums(ctx context.Context, mbid string) ([]Album, error) {
	var albums []Album
	offset := 0

	for {
		path := fmt.Sprintf("/release-group?artist=%s&limit=%d&offset=%d&fmt=json", mbid, albumsPageSize, offset)
		body, err := c.get(ctx, path)
		if err != nil {
			return nil, err
		}

		var resp releaseGroupSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode release-group response: %w", err)
		}

		if len(resp.ReleaseGroups) == 0 {
			break
		}

		for _, rg := range resp.ReleaseGroups {
			if rg.PrimaryType != "Album" && rg.PrimaryType != "Compilation" {
				continue
			}

			var year *int
			if match := leadingYearRe.FindString(rg.FirstReleaseDate); match != "" {
				y := 0
				fmt.Sscanf(match, "%d", &y)
				year = &y
			}

			albums = append(albums, Album{
				MBReleaseGroupID: rg.ID,
				Title:            rg.Title,
				Year:             year,
				PrimaryType:      rg.PrimaryType,
				SecondaryTypes:   rg.SecondaryTypes,
			})
		}

		offset += len(resp.ReleaseGroups)
		if offset >= resp.ReleaseGroupCount {
			break
		}
	}

	return albums, nil
}
