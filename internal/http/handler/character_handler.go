package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"github.com/sifan077/CharacterVault/internal/app/service"
	"github.com/sifan077/CharacterVault/internal/app/validation"
	"go.uber.org/zap"
)

// CharacterDeps groups dependencies required by the collection handlers.
type CharacterDeps struct {
	Logger     *zap.Logger
	Characters service.CharacterService
	Validator  *validation.Validator
}

// CharacterHandler implements the character collection endpoints.
type CharacterHandler struct {
	logger     *zap.Logger
	characters service.CharacterService
	validator  *validation.Validator
}

// NewCharacterHandler creates a collection handler with the provided dependencies.
func NewCharacterHandler(deps CharacterDeps) *CharacterHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	return &CharacterHandler{
		logger:     logger,
		characters: deps.Characters,
		validator:  v,
	}
}

// Register wires the collection routes onto router, which is expected to be
// mounted at the collection prefix.
func (h *CharacterHandler) Register(router fiber.Router) {
	router.Get("/", h.List)
	router.Post("/", h.Create)
	router.Get("/:id", h.Get)
}

// List handles GET /collection
func (h *CharacterHandler) List(c *fiber.Ctx) error {
	q, err := h.validator.ParseListQuery(c.Query("page"), c.Query("limit"))
	if err != nil {
		return err
	}

	page, err := h.characters.ListCharacters(c.UserContext(), q.Page, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// Create handles POST /collection
func (h *CharacterHandler) Create(c *fiber.Ctx) error {
	req, err := h.validator.DecodeCreate(c.Body())
	if err != nil {
		return err
	}

	character, err := h.characters.CreateCharacter(c.UserContext(), req)
	if err != nil {
		return err
	}
	c.Location(character.URL)
	return c.Status(fiber.StatusCreated).JSON(character)
}

// Get handles GET /collection/:id
func (h *CharacterHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return apperr.NewValidationError([]string{"Id must be a positive integer"})
	}

	character, err := h.characters.GetCharacter(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(character)
}
