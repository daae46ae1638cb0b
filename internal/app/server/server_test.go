package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/CharacterVault/config"
	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/app/repository"
	"github.com/sifan077/CharacterVault/internal/app/service"
	"github.com/sifan077/CharacterVault/internal/infra/database"
	infraPrometheus "github.com/sifan077/CharacterVault/internal/infra/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://localhost:3001"

func newTestServer(t *testing.T, env string) (*Server, *database.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.StorageConfig{Driver: config.StorageSQLite, Path: database.MemoryPath}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.AutoMigrate(ctx, db.Gorm, &model.CharacterRecord{}))

	repo := repository.NewCharacterRepository(db.Gorm, baseURL)
	filter, err := service.LoadIDFilter(ctx, repo)
	require.NoError(t, err)
	metrics := infraPrometheus.NewMetrics()

	cfg := &config.Config{App: config.AppConfig{Env: env, BaseURL: baseURL, CORSOrigin: "*", Version: "1.0.0"}}
	srv := New(Dependencies{
		Config:     cfg,
		Characters: service.NewCharacterService(repo, service.Options{Filter: filter, Created: metrics.CharactersCreated}),
		Storage:    db,
		Metrics:    metrics,
	})
	return srv, db
}

func do(t *testing.T, srv *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func characterJSON(name, image string) string {
	return fmt.Sprintf(`{
		"name": %q, "status": "Alive", "species": "Human", "gender": "Female",
		"origin": {"name": "Earth (C-137)", "url": "https://rickandmortyapi.com/api/location/1"},
		"location": {"name": "Earth (Replacement Dimension)"},
		"image": %q,
		"episode": ["https://rickandmortyapi.com/api/episode/6"],
		"isAdmin": true
	}`, name, image)
}

func TestServer_CreateThenList(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvDevelopment)

	resp, raw := do(t, srv, http.MethodPost, "/collection", characterJSON("Summer Smith", "https://example.com/summer.png"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created model.Character
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Positive(t, created.ID)
	assert.Equal(t, fmt.Sprintf("%s/collection/%d", baseURL, created.ID), created.URL)
	assert.Equal(t, []string{"https://rickandmortyapi.com/api/episode/6"}, created.Episode)
	assert.False(t, created.Created.IsZero())

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.NotContains(t, generic, "isAdmin")

	resp, raw = do(t, srv, http.MethodGet, "/collection?page=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var page model.CollectionPage
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, 1, page.Info.CurrentPage)
	assert.Equal(t, 1, page.Info.TotalItems)
	seen := 0
	for _, c := range page.Results {
		if c.ID == created.ID {
			seen++
		}
	}
	assert.Equal(t, 1, seen)

	resp, raw = do(t, srv, http.MethodGet, fmt.Sprintf("/collection/%d", created.ID), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, _ = do(t, srv, http.MethodGet, "/api/characters?limit=5", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ListEmptyStore(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvDevelopment)

	resp, raw := do(t, srv, http.MethodGet, "/collection", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"results":[],"info":{"currentPage":1,"totalPages":0,"totalItems":0,"itemsPerPage":20,"hasNext":false,"hasPrev":false}}`, string(raw))
}

func TestServer_NewestFirst(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvDevelopment)
	for _, name := range []string{"First", "Second", "Third"} {
		resp, raw := do(t, srv, http.MethodPost, "/collection", characterJSON(name, "https://example.com/x.jpg"))
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}

	_, raw := do(t, srv, http.MethodGet, "/collection?limit=2", "")
	var page model.CollectionPage
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Third", page.Results[0].Name)
	assert.Equal(t, "Second", page.Results[1].Name)
	assert.Equal(t, 2, page.Info.TotalPages)
	assert.True(t, page.Info.HasNext)
}

func TestServer_ErrorResponses(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvDevelopment)

	cases := []struct {
		name, method, path, body string
		status                   int
		code                     string
	}{
		{"invalid json", http.MethodPost, "/collection", `{"name": "Rick",`, 400, "INVALID_JSON"},
		{"validation", http.MethodPost, "/collection", `{"status": "Zombie"}`, 400, "VALIDATION_ERROR"},
		{"image rule", http.MethodPost, "/collection", characterJSON("Rick", "https://example.com/rick"), 422, "BUSINESS_RULE_VIOLATION"},
		{"bad page", http.MethodGet, "/collection?page=0", "", 400, "VALIDATION_ERROR"},
		{"bad limit", http.MethodGet, "/collection?limit=101", "", 400, "VALIDATION_ERROR"},
		{"unknown id", http.MethodGet, "/collection/999", "", 404, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(raw))

			var body struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestServer_RouteNotFound(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvDevelopment)

	resp, raw := do(t, srv, http.MethodGet, "/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":{"message":"Route GET /nonexistent not found","code":"ROUTE_NOT_FOUND"}}`, string(raw))
}

func TestServer_StoreFailureRedactedInProduction(t *testing.T) {
	for _, env := range []string{config.EnvDevelopment, config.EnvProduction} {
		srv, db := newTestServer(t, env)
		require.NoError(t, db.Close())

		resp, raw := do(t, srv, http.MethodGet, "/collection", "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body struct {
			Message string         `json:"message"`
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "DATABASE_ERROR", body.Code)
		if env == config.EnvProduction {
			assert.Nil(t, body.Details, string(raw))
		} else {
			assert.Contains(t, body.Details, "originalMessage")
		}
	}
}

func TestServer_HealthAndMetricsHeaders(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvDevelopment)

	resp, raw := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"status":"ok"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, _ = do(t, srv, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
