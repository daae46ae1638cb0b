package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/app/repository"
	"github.com/sifan077/CharacterVault/internal/app/validation"
	"go.uber.org/zap"
)

const (
	minPage      = 1
	defaultLimit = validation.DefaultLimit
	minLimit     = validation.MinLimit
	maxLimit     = validation.MaxLimit
)

// CharacterService defines behaviour-level operations on stored characters.
type CharacterService interface {
	ListCharacters(ctx context.Context, page, limit int) (*model.CollectionPage, error)
	CreateCharacter(ctx context.Context, req *model.CreateCharacterRequest) (*model.Character, error)
	GetCharacter(ctx context.Context, id int64) (*model.Character, error)
}

// Options wires the optional collaborators. Every field may be left zero.
type Options struct {
	Cache  PageCache
	Filter *IDFilter
	// FilterAuthoritative lets a filter miss answer 404 without a store
	// lookup. Only set it when this process is the store's sole writer.
	FilterAuthoritative bool
	Publisher           EventPublisher
	Created             prometheus.Counter
	Logger              *zap.Logger
}

type characterService struct {
	repo          repository.CharacterRepository
	cache         PageCache
	filter        *IDFilter
	authoritative bool
	publisher     EventPublisher
	created       prometheus.Counter
	logger        *zap.Logger
}

// NewCharacterService returns a service backed by the given repository.
func NewCharacterService(repo repository.CharacterRepository, opts Options) CharacterService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &characterService{
		repo:          repo,
		cache:         opts.Cache,
		filter:        opts.Filter,
		authoritative: opts.FilterAuthoritative && opts.Filter != nil,
		publisher:     opts.Publisher,
		created:       opts.Created,
		logger:        logger,
	}
}

// ClampPage normalizes page and limit the same way the list endpoint does.
func ClampPage(page, limit int) (int, int) {
	if page < minPage {
		page = minPage
	}
	switch {
	case limit == 0:
		limit = defaultLimit
	case limit < minLimit:
		limit = minLimit
	case limit > maxLimit:
		limit = maxLimit
	}
	return page, limit
}

// BuildPageInfo computes pagination metadata for a page of total items.
func BuildPageInfo(page, limit int, total int64) model.PageInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return model.PageInfo{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   int(total),
		ItemsPerPage: limit,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}

func (s *characterService) ListCharacters(ctx context.Context, page, limit int) (*model.CollectionPage, error) {
	page, limit = ClampPage(page, limit)

	var cacheKey string
	if s.cache != nil {
		var cached *model.CollectionPage
		cached, cacheKey = s.cache.Get(ctx, page, limit)
		if cached != nil {
			return cached, nil
		}
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count characters: %w", err)
	}

	records, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	result := &model.CollectionPage{
		Results: make([]model.Character, 0, len(records)),
		Info:    BuildPageInfo(page, limit, total),
	}
	for i := range records {
		result.Results = append(result.Results, records[i].ToAPI())
	}

	if s.cache != nil && cacheKey != "" {
		s.cache.Set(ctx, cacheKey, result)
	}
	return result, nil
}

func (s *characterService) CreateCharacter(ctx context.Context, req *model.CreateCharacterRequest) (*model.Character, error) {
	if req == nil {
		return nil, apperr.NewValidationError([]string{"Request body is required"})
	}
	if req.Image != "" && !validation.IsValidImageURL(req.Image) {
		return nil, &apperr.BusinessRuleError{
			Rule:    "image_extension",
			Message: "Image URL must point to a valid image file",
		}
	}

	rec := req.ToRecord()
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	character := rec.ToAPI()

	s.filter.Add(character.ID)
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.created != nil {
		s.created.Inc()
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCreated(ctx, &character); err != nil {
			s.logger.Warn("failed to publish character event",
				zap.Int64("character_id", character.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("character created",
		zap.Int64("id", character.ID),
		zap.String("name", character.Name))
	return &character, nil
}

func (s *characterService) GetCharacter(ctx context.Context, id int64) (*model.Character, error) {
	known := s.filter.MayContain(id)
	if !known && s.authoritative {
		return nil, apperr.NewNotFound("Character")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCharacterNotFound) {
			return nil, apperr.NewNotFound("Character")
		}
		return nil, fmt.Errorf("get character %d: %w", id, err)
	}
	if !known {
		s.filter.Add(id)
	}
	character := rec.ToAPI()
	return &character, nil
}
