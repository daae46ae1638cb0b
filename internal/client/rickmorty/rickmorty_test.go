package rickmorty

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageBody = `{
	"info": {"count": 826, "pages": 42, "next": "https://rickandmortyapi.com/api/character?page=3", "prev": "https://rickandmortyapi.com/api/character?page=1"},
	"results": [{
		"id": 21, "name": "Aqua Morty", "status": "unknown", "species": "Humanoid", "type": "Fish-Person", "gender": "Male",
		"origin": {"name": "unknown", "url": ""},
		"location": {"name": "Citadel of Ricks", "url": "https://rickandmortyapi.com/api/location/3"},
		"image": "https://rickandmortyapi.com/api/character/avatar/21.jpeg",
		"episode": ["https://rickandmortyapi.com/api/episode/10"],
		"url": "https://rickandmortyapi.com/api/character/21",
		"created": "2017-11-04T22:39:48.055Z"
	}]
}`

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").api.BaseURL())
}

func TestClient_GetCharacters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/character", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	page, err := New(srv.URL).GetCharacters(context.Background(), 2).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 42, page.Info.Pages)
	require.NotNil(t, page.Info.Next)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Aqua Morty", page.Results[0].Name)
	assert.Equal(t, "Citadel of Ricks", page.Results[0].Location.Name)
	assert.Equal(t, 2017, page.Results[0].Created.Year())
}

func TestClient_GetCharacters_ClampsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"info":{"count":0,"pages":1,"next":null,"prev":null},"results":[]}`))
	}))
	defer srv.Close()

	resp := New(srv.URL).GetCharacters(context.Background(), -3)
	require.True(t, resp.Success)
	assert.Nil(t, resp.Data.Info.Next)
}

func TestClient_GetCharacter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/character/1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Character not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"name":"Rick Sanchez","episode":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	rick := c.GetCharacter(context.Background(), 1)
	require.True(t, rick.Success)
	assert.Equal(t, "Rick Sanchez", rick.Data.Name)

	missing := c.GetCharacter(context.Background(), 99999)
	require.False(t, missing.Success)
	assert.Equal(t, "Character not found", missing.Error.Message)
	assert.Equal(t, "404", missing.Error.Code)
}

func TestClient_SearchCharacters_EncodesName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mr. Meeseeks & co", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.NotContains(t, r.URL.RawQuery, " ")
		_, _ = w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	resp := New(srv.URL).SearchCharacters(context.Background(), "Mr. Meeseeks & co", 0)
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.Len(t, resp.Data.Results, 1)
}
