package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFindArtistByNamePrefersExactCaseInsensitiveMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artists":[
			{"id":"aaa","name":"new found glory tribute","score":100},
			{"id":"bbb","name":"New Found Glory","score":90}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: time.Millisecond})
	match, err := c.FindArtistByName(context.Background(), "New Found Glory")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, "bbb", match.MBID)
}

func TestFindArtistByNameNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artists":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: time.Millisecond})
	match, err := c.FindArtistByName(context.Background(), "Nobody")
	require.NoError(t, err)
	require.Nil(t, match)
}

func TestFetchArtistAlbumsPaginatesAndFilters(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"release-group-count":3,"release-groups":[
				{"id":"1","title":"Sticks and Stones","primary-type":"Album","first-release-date":"2002-04-09"},
				{"id":"2","title":"A Single","primary-type":"Single","first-release-date":"2001-01-01"}
			]}`))
			return
		}
		w.Write([]byte(`{"release-group-count":3,"release-groups":[
			{"id":"3","title":"Live EP","primary-type":"Album","secondary-types":["Live"],"first-release-date":"2004"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: time.Millisecond})
	albums, err := c.FetchArtistAlbums(context.Background(), "mbid-123")
	require.NoError(t, err)
	require.Len(t, albums, 2)
	require.Equal(t, "Sticks and Stones", albums[0].Title)
	require.NotNil(t, albums[0].Year)
	require.Equal(t, 2002, *albums[0].Year)
	require.Equal(t, []string{"Live"}, albums[1].SecondaryTypes)
}
