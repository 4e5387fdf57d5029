package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ajitseee/sweetshop/internal/cache"
	"github.com/ajitseee/sweetshop/internal/dto"
	"github.com/ajitseee/sweetshop/internal/model"
	"github.com/ajitseee/sweetshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// SweetService defines the business logic contract for inventory items.
type SweetService interface {
	Create(ctx context.Context, req dto.CreateSweetRequest) (*dto.SweetResponse, error)
	List(ctx context.Context) ([]dto.SweetResponse, error)
	Search(ctx context.Context, filter dto.SweetFilter) ([]dto.SweetResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SweetResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSweetRequest) (*dto.SweetResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.SweetResponse, error)
	Purchase(ctx context.Context, id uuid.UUID, quantity int) (*dto.SweetResponse, error)
	Restock(ctx context.Context, id uuid.UUID, quantity int) (*dto.SweetResponse, error)
}

type sweetService struct {
	repo  repository.SweetRepository
	cache *cache.CatalogCache
	sf    singleflight.Group
}

// NewSweetService creates a SweetService. If c is nil, caching is disabled.
func NewSweetService(repo repository.SweetRepository, c *cache.CatalogCache) SweetService {
	return &sweetService{repo: repo, cache: c}
}

func (s *sweetService) Create(ctx context.Context, req dto.CreateSweetRequest) (*dto.SweetResponse, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case category == "":
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	case req.Price == nil:
		return nil, fmt.Errorf("%w: price is required", ErrValidation)
	case req.Quantity == nil:
		return nil, fmt.Errorf("%w: quantity is required", ErrValidation)
	}
	if err := checkPrice(*req.Price); err != nil {
		return nil, err
	}
	if err := checkQuantity(*req.Quantity); err != nil {
		return nil, err
	}

	sweet := &model.Sweet{
		Name:        name,
		Category:    category,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.Create(ctx, sweet); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	log.Info().Str("sweet_id", sweet.ID.String()).Str("name", sweet.Name).Msg("sweet created")
	resp := ToSweetResponse(sweet)
	return &resp, nil
}

func (s *sweetService) List(ctx context.Context) ([]dto.SweetResponse, error) {
	if s.cache == nil {
		return s.list(ctx)
	}
	// The shared load must outlive any single caller that disconnects.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do("list", func() (interface{}, error) {
		if list, err := s.cache.GetList(loadCtx); err == nil && list != nil {
			return list, nil
		}
		list, err := s.list(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(loadCtx, list); err != nil {
			log.Warn().Err(err).Msg("catalog cache: set list failed")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dto.SweetResponse), nil
}

func (s *sweetService) list(ctx context.Context) ([]dto.SweetResponse, error) {
	sweets, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toSweetResponses(sweets), nil
}

func (s *sweetService) Search(ctx context.Context, filter dto.SweetFilter) ([]dto.SweetResponse, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter.Category = strings.TrimSpace(filter.Category)
	if filter.IsZero() {
		return s.List(ctx)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%w: minPrice must not exceed maxPrice", ErrValidation)
	}

	if s.cache == nil {
		return s.search(ctx, filter)
	}
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do("search:"+cache.SearchKey(filter), func() (interface{}, error) {
		if list, err := s.cache.GetSearch(loadCtx, filter); err == nil && list != nil {
			return list, nil
		}
		list, err := s.search(loadCtx, filter)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetSearch(loadCtx, filter, list); err != nil {
			log.Warn().Err(err).Msg("catalog cache: set search failed")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dto.SweetResponse), nil
}

func (s *sweetService) search(ctx context.Context, filter dto.SweetFilter) ([]dto.SweetResponse, error) {
	sweets, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toSweetResponses(sweets), nil
}

func (s *sweetService) Get(ctx context.Context, id uuid.UUID) (*dto.SweetResponse, error) {
	sweet, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSweetResponse(sweet)
	return &resp, nil
}

func (s *sweetService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSweetRequest) (*dto.SweetResponse, error) {
	if req.Empty() {
		return s.Get(ctx, id)
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		fields["name"] = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, fmt.Errorf("%w: category must not be empty", ErrValidation)
		}
		fields["category"] = category
	}
	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return nil, err
		}
		fields["price"] = *req.Price
	}
	if req.Quantity != nil {
		if err := checkQuantity(*req.Quantity); err != nil {
			return nil, err
		}
		fields["quantity"] = *req.Quantity
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

func (s *sweetService) Delete(ctx context.Context, id uuid.UUID) (*dto.SweetResponse, error) {
	sweet, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.invalidate(ctx)
	log.Info().Str("sweet_id", id.String()).Msg("sweet deleted")
	resp := ToSweetResponse(sweet)
	return &resp, nil
}

// Purchase decrements stock with a single guarded UPDATE, so two concurrent
// purchases can never both succeed against the same remaining units.
func (s *sweetService) Purchase(ctx context.Context, id uuid.UUID, quantity int) (*dto.SweetResponse, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	ok, err := s.repo.DecrementStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Either the row is gone or the guard rejected the decrement.
		if _, err := s.find(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientStock
	}

	s.invalidate(ctx)
	log.Info().Str("sweet_id", id.String()).Int("quantity", quantity).Msg("sweet purchased")
	return s.Get(ctx, id)
}

func (s *sweetService) Restock(ctx context.Context, id uuid.UUID, quantity int) (*dto.SweetResponse, error) {
	if quantity < 1 || quantity > model.MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be a positive number", ErrValidation)
	}

	ok, err := s.repo.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Either the row is gone or the new stock would overflow the column.
		if _, err := s.find(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: stock cannot exceed %d", ErrValidation, model.MaxQuantity)
	}

	s.invalidate(ctx)
	log.Info().Str("sweet_id", id.String()).Int("quantity", quantity).Msg("sweet restocked")
	return s.Get(ctx, id)
}

func checkPrice(p decimal.Decimal) error {
	switch {
	case p.IsNegative():
		return fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	case p.GreaterThan(model.MaxPrice):
		return fmt.Errorf("%w: price must not exceed %s", ErrValidation, model.MaxPrice)
	case !p.Equal(p.Round(model.PriceDecimals)):
		return fmt.Errorf("%w: price must have at most %d decimal places", ErrValidation, model.PriceDecimals)
	}
	return nil
}

func checkQuantity(q int) error {
	if q < 0 || q > model.MaxQuantity {
		return fmt.Errorf("%w: quantity must be an integer between 0 and %d", ErrValidation, model.MaxQuantity)
	}
	return nil
}

func (s *sweetService) find(ctx context.Context, id uuid.UUID) (*model.Sweet, error) {
	sweet, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sweet, nil
}

// invalidate is best effort: a stale cache entry expires with its TTL.
func (s *sweetService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog cache: invalidation failed")
	}
}

func ToSweetResponse(s *model.Sweet) dto.SweetResponse {
	return dto.SweetResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		Category:    s.Category,
		Price:       s.Price,
		Quantity:    s.Quantity,
		Description: s.Description,
		ImageURL:    s.ImageURL,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toSweetResponses(sweets []model.Sweet) []dto.SweetResponse {
	resp := make([]dto.SweetResponse, len(sweets))
	for i := range sweets {
		resp[i] = ToSweetResponse(&sweets[i])
	}
	return resp
}
