package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/http/middleware"
	"go.uber.org/zap"
)

type mockCharacterService struct {
	listFn   func(ctx context.Context, page, limit int) (*model.CollectionPage, error)
	createFn func(ctx context.Context, req *model.CreateCharacterRequest) (*model.Character, error)
	getFn    func(ctx context.Context, id int64) (*model.Character, error)
}

func (m *mockCharacterService) ListCharacters(ctx context.Context, page, limit int) (*model.CollectionPage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, limit)
	}
	return &model.CollectionPage{Results: []model.Character{}}, nil
}

func (m *mockCharacterService) CreateCharacter(ctx context.Context, req *model.CreateCharacterRequest) (*model.Character, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Character{ID: 1, Name: req.Name, Episode: []string{}}, nil
}

func (m *mockCharacterService) GetCharacter(ctx context.Context, id int64) (*model.Character, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, apperr.NewNotFound("Character")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newApp(svc *mockCharacterService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zap.NewNop(), true)})
	NewCharacterHandler(CharacterDeps{Characters: svc}).Register(app.Group("/collection"))
	return app
}

func readJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

const validBody = `{
	"name": "Birdperson", "status": "Alive", "species": "Bird-Person", "gender": "Male",
	"origin": {"name": "Bird World"}, "location": {"name": "Planet Squanch"},
	"image": "https://example.com/birdperson.png", "episode": []
}`

func TestCharacterHandler_List(t *testing.T) {
	var gotPage, gotLimit int
	app := newApp(&mockCharacterService{
		listFn: func(ctx context.Context, page, limit int) (*model.CollectionPage, error) {
			gotPage, gotLimit = page, limit
			return &model.CollectionPage{Results: []model.Character{}, Info: model.PageInfo{CurrentPage: page}}, nil
		},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/collection?page=2&limit=5&sort=name", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotPage != 2 || gotLimit != 5 {
		t.Fatalf("expected page 2 limit 5, got %d %d", gotPage, gotLimit)
	}

	var body map[string]json.RawMessage
	readJSON(t, resp, &body)
	if string(body["results"]) != "[]" {
		t.Fatalf("expected empty results array, got %s", body["results"])
	}
	if _, ok := body["info"]; !ok {
		t.Fatalf("expected info block")
	}
}

func TestCharacterHandler_List_InvalidQuery(t *testing.T) {
	app := newApp(&mockCharacterService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/collection?limit=500", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body middleware.ErrorBody
	readJSON(t, resp, &body)
	if body.Code != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %s", body.Code)
	}
}

func TestCharacterHandler_Create(t *testing.T) {
	app := newApp(&mockCharacterService{
		createFn: func(ctx context.Context, req *model.CreateCharacterRequest) (*model.Character, error) {
			return &model.Character{ID: 7, Name: req.Name, URL: "http://localhost:3001/collection/7", Episode: []string{}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/collection", strings.NewReader(validBody))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != "http://localhost:3001/collection/7" {
		t.Fatalf("unexpected Location %q", loc)
	}

	var character model.Character
	readJSON(t, resp, &character)
	if character.ID != 7 || character.Name != "Birdperson" {
		t.Fatalf("unexpected character: %+v", character)
	}
}

func TestCharacterHandler_Create_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		svcErr error
		status int
		code   apperr.Code
	}{
		{"malformed json", `{"name":`, nil, http.StatusBadRequest, apperr.CodeInvalidJSON},
		{"missing fields", `{"name": "Only Name"}`, nil, http.StatusBadRequest, apperr.CodeValidation},
		{"business rule", validBody, &apperr.BusinessRuleError{Message: "Image URL must point to a valid image file"}, http.StatusUnprocessableEntity, apperr.CodeBusinessRule},
		{"store failure", validBody, apperr.NewStoreError("create", errors.New("disk full")), http.StatusInternalServerError, apperr.CodeDatabase},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(&mockCharacterService{
				createFn: func(ctx context.Context, req *model.CreateCharacterRequest) (*model.Character, error) {
					if tc.svcErr == nil {
						t.Fatal("service must not be reached")
					}
					return nil, tc.svcErr
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/collection", strings.NewReader(tc.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			var body middleware.ErrorBody
			readJSON(t, resp, &body)
			if body.Code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, body.Code)
			}
		})
	}
}

func TestCharacterHandler_Get(t *testing.T) {
	app := newApp(&mockCharacterService{
		getFn: func(ctx context.Context, id int64) (*model.Character, error) {
			if id == 3 {
				return &model.Character{ID: 3, Name: "Squanchy", Episode: []string{}}, nil
			}
			return nil, apperr.NewNotFound("Character")
		},
	})

	for path, want := range map[string]int{
		"/collection/3":   http.StatusOK,
		"/collection/4":   http.StatusNotFound,
		"/collection/abc": http.StatusBadRequest,
		"/collection/0":   http.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("%s: request failed: %v", path, err)
		}
		if resp.StatusCode != want {
			t.Fatalf("%s: expected %d, got %d", path, want, resp.StatusCode)
		}
	}
}

func TestHealthHandler(t *testing.T) {
	healthy := true
	app := fiber.New()
	NewHealthHandler(HealthDeps{
		Environment: "test",
		Version:     "1.0.0",
		Storage: pingerFunc(func(ctx context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("db gone")
		}),
	}).Register(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var body map[string]string
	readJSON(t, resp, &body)
	if body["status"] != "ok" || body["environment"] != "test" || body["version"] != "1.0.0" || body["timestamp"] == "" {
		t.Fatalf("unexpected health body: %v", body)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ready, got %d", resp.StatusCode)
	}

	healthy = false
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
