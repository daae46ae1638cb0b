package altbackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"name":"Rick"},{"id":2,"name":"Morty"}]`))
	}))
	defer srv.Close()

	list, err := New(srv.URL).List(context.Background()).Unwrap()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Morty", list[1].Name)
}

func TestClient_List_NullBodyIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	resp := New(srv.URL).List(context.Background())
	require.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestClient_GetPlainNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	resp := New(srv.URL).Get(context.Background(), 4)
	require.False(t, resp.Success)
	assert.Equal(t, http.StatusNotFound, resp.Error.Status)
	assert.Equal(t, "An error occurred", resp.Error.Message)
}

func TestClient_Create(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req model.CreateCharacterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(model.Character{ID: 3, Name: req.Name})
	}))
	defer srv.Close()

	created, err := New(srv.URL).Create(context.Background(), &model.CreateCharacterRequest{Name: "Summer"}).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
}
